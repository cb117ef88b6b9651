package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	ports "budgetbook/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// titleTTL bounds how long tab titles are trusted; tabs deleted by hand
// are recreated on the next write after expiry or a failed write.
const titleTTL = 10 * time.Minute

// Client mirrors workbooks into one spreadsheet, one tab per user and sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	titles        *cache.LRUCache[[]string]
}

// Ensure interface conformance
var (
	_ ports.WorkbookWriter = (*Client)(nil)
	_ ports.WorkbookReader = (*Client)(nil)
)

// Options configures New. Credentials come from CredentialsJSON, then
// CredentialsFile, then GOOGLE_APPLICATION_CREDENTIALS.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, Options{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
}

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, strings.TrimSpace(opts.CredentialsJSON), strings.TrimSpace(opts.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, spreadsheetID), nil
}

func newClient(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		titles:        cache.NewLRUCache[[]string](1, titleTTL),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteWorkbook clears and rewrites the user's tabs, creating missing ones.
func (c *Client) WriteWorkbook(ctx context.Context, user core.UserID, wb core.Workbook) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if !user.Valid() {
		return core.ErrUnknownUser
	}
	if len(wb.Sheets) == 0 {
		return nil
	}

	existing, err := c.tabTitles(ctx)
	if err != nil {
		return err
	}
	titles := make([]string, 0, len(wb.Sheets))
	for _, sh := range wb.Sheets {
		titles = append(titles, tabTitle(user, sh.Name))
	}
	if missing := missingTabs(existing, titles); len(missing) > 0 {
		req := &gsheet.BatchUpdateSpreadsheetRequest{}
		for _, title := range missing {
			req.Requests = append(req.Requests, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
			})
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			c.titles.Delete(c.spreadsheetID)
			return fmt.Errorf("create tabs %v: %w", missing, err)
		}
		c.titles.Set(c.spreadsheetID, append(slices.Clone(existing), missing...))
		slog.InfoContext(ctx, "Created spreadsheet tabs", "user", user, "tabs", missing)
	}

	ranges := make([]string, 0, len(titles))
	data := make([]*gsheet.ValueRange, 0, len(titles))
	for i, sh := range wb.Sheets {
		ranges = append(ranges, quoteTitle(titles[i]))
		data = append(data, &gsheet.ValueRange{
			Range:  quoteTitle(titles[i]) + "!A1",
			Values: toValues(sh),
		})
	}
	if _, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID,
		&gsheet.BatchClearValuesRequest{Ranges: ranges}).Context(ctx).Do(); err != nil {
		c.titles.Delete(c.spreadsheetID)
		return fmt.Errorf("clear tabs: %w", err)
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("write tabs: %w", err)
	}
	return nil
}

// ReadWorkbook reads the user's tabs with unformatted values; dates on
// formatted cells arrive as serial numbers.
func (c *Client) ReadWorkbook(ctx context.Context, user core.UserID) (core.Workbook, error) {
	if c.svc == nil {
		return core.Workbook{}, errors.New("sheets service not initialized")
	}
	if !user.Valid() {
		return core.Workbook{}, core.ErrUnknownUser
	}

	existing, err := c.tabTitles(ctx)
	if err != nil {
		return core.Workbook{}, err
	}
	present := map[string]bool{}
	for _, t := range existing {
		present[t] = true
	}
	var names, ranges []string
	for _, name := range []string{core.SheetCategories, core.SheetForecasts, core.SheetExpenses} {
		title := tabTitle(user, name)
		if !present[title] {
			continue
		}
		names = append(names, name)
		ranges = append(ranges, quoteTitle(title))
	}
	if len(ranges) == 0 {
		return core.Workbook{}, nil
	}

	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return core.Workbook{}, fmt.Errorf("read tabs: %w", err)
	}
	var wb core.Workbook
	for i, vr := range resp.ValueRanges {
		if i >= len(names) {
			break
		}
		if sh, ok := parseValues(names[i], vr.Values); ok {
			wb.Sheets = append(wb.Sheets, sh)
		}
	}
	return wb, nil
}

// tabTitles lists the spreadsheet's tab titles, served from cache while
// fresh.
func (c *Client) tabTitles(ctx context.Context) ([]string, error) {
	return c.titles.GetOrLoad(c.spreadsheetID, func() ([]string, error) {
		return c.fetchTabTitles(ctx)
	})
}

func (c *Client) fetchTabTitles(ctx context.Context) ([]string, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	out := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			out = append(out, s.Properties.Title)
		}
	}
	return out, nil
}
