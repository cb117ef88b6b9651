package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage format of expense dates.
const DateLayout = "2006-01-02"

// spreadsheetEpoch is day zero of the 1900 date system as used by
// spreadsheet applications (it absorbs the fictitious 1900-02-29).
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is the serial of 9999-12-31, the last date with a 4-digit year.
const maxSerial = 2958465

var textDateLayouts = []string{
	DateLayout,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
}

// YearKey formats the forecast year key.
func YearKey(year int) string {
	return strconv.Itoa(year)
}

// MonthString formats the 2-digit forecast month key.
func MonthString(month int) string {
	return fmt.Sprintf("%02d", month)
}

// MonthKey formats the "YYYY-MM" key used for expenses and savings.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ValidMonth reports whether month is in 1..12.
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// ParseMonthKey splits a "YYYY-MM" key.
func ParseMonthKey(key string) (year, month int, err error) {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, key)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, key)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || !ValidMonth(month) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, key)
	}
	return year, month, nil
}

// PrevMonth steps back one calendar month, rolling over January.
func PrevMonth(year, month int) (int, int) {
	if month <= 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth steps forward one calendar month, rolling over December.
func NextMonth(year, month int) (int, int) {
	if month >= 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// ParseDate parses a stored or user-entered text date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FirstOfMonth returns the "YYYY-MM-01" date string.
func FirstOfMonth(year, month int) string {
	return MonthKey(year, month) + "-01"
}

// SerialToDate converts a spreadsheet date serial to a UTC date.
// The fractional part (time of day) is dropped.
func SerialToDate(serial float64) time.Time {
	days := int(math.Floor(serial))
	return spreadsheetEpoch.AddDate(0, 0, days)
}

// DateToSerial is the inverse of SerialToDate for whole days.
func DateToSerial(t time.Time) float64 {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return math.Round(d.Sub(spreadsheetEpoch).Hours() / 24)
}

// NormalizeDate accepts a spreadsheet cell holding either a text date or a
// numeric date serial and returns it as "YYYY-MM-DD".
func NormalizeDate(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", fmt.Errorf("%w: empty", ErrInvalidDate)
	case time.Time:
		return val.UTC().Format(DateLayout), nil
	case float64:
		return serialString(val)
	case float32:
		return serialString(float64(val))
	case int:
		return serialString(float64(val))
	case int64:
		return serialString(float64(val))
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return "", fmt.Errorf("%w: empty", ErrInvalidDate)
		}
		if t, err := ParseDate(s); err == nil {
			return t.Format(DateLayout), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialString(f)
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	default:
		return NormalizeDate(fmt.Sprint(val))
	}
}

func serialString(serial float64) (string, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 || serial >= maxSerial+1 {
		return "", fmt.Errorf("%w: serial %v", ErrInvalidDate, serial)
	}
	return SerialToDate(serial).Format(DateLayout), nil
}

// DateMonth returns year and month of a stored expense date string.
func DateMonth(date string) (year, month int, err error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), int(t.Month()), nil
}
