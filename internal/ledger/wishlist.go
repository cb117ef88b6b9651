package ledger

import (
	"context"
	"math"

	"budgetbook/internal/core"
)

// fallbackMonthlySavings stands in for the monthly savings pace when the
// year has no recorded savings.
const fallbackMonthlySavings = 1000

// GoalPatch updates the non-nil fields of a wishlist goal.
type GoalPatch struct {
	Name         *string
	TargetAmount *float64
	SavedAmount  *float64
	Note         *string
}

func (l *Ledger) Wishlist(user core.UserID) []core.WishlistGoal {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return nil
	}
	out := make([]core.WishlistGoal, 0, len(u.Wishlist))
	for _, g := range u.Wishlist {
		out = append(out, *g)
	}
	return out
}

// AddWishlistGoal stores goal under a new id. SavedAmount defaults to 0.
func (l *Ledger) AddWishlistGoal(ctx context.Context, user core.UserID, goal core.WishlistGoal) (string, error) {
	goal.ID = l.newID()
	_, err := l.mutate(ctx, user, func(u *core.User) (bool, error) {
		u.Wishlist = append(u.Wishlist, &goal)
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return goal.ID, nil
}

func (l *Ledger) UpdateWishlistGoal(ctx context.Context, user core.UserID, id string, p GoalPatch) (bool, error) {
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		for _, g := range u.Wishlist {
			if g.ID != id {
				continue
			}
			if p.Name != nil {
				g.Name = *p.Name
			}
			if p.TargetAmount != nil {
				g.TargetAmount = core.Amount(*p.TargetAmount)
			}
			if p.SavedAmount != nil {
				g.SavedAmount = core.Amount(*p.SavedAmount)
			}
			if p.Note != nil {
				g.Note = *p.Note
			}
			return true, nil
		}
		return false, nil
	})
}

func (l *Ledger) DeleteWishlistGoal(ctx context.Context, user core.UserID, id string) (bool, error) {
	return l.mutate(ctx, user, func(u *core.User) (bool, error) {
		for i, g := range u.Wishlist {
			if g.ID == id {
				u.Wishlist = append(u.Wishlist[:i], u.Wishlist[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
}

// GoalProgress estimates completion of a goal from the savings pace of
// year. A goal with no positive target counts as complete.
func (l *Ledger) GoalProgress(user core.UserID, goal core.WishlistGoal, year int) GoalProgress {
	l.mu.Lock()
	defer l.mu.Unlock()
	var yearly float64
	if u, err := l.user(user); err == nil {
		yearly = yearlySavings(u, year).Total
	}
	return goalProgress(goal, yearly)
}

// WishlistProgress returns GoalProgress for every goal of the user.
func (l *Ledger) WishlistProgress(user core.UserID, year int) []GoalProgress {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(user)
	if err != nil {
		return nil
	}
	yearly := yearlySavings(u, year).Total
	out := make([]GoalProgress, 0, len(u.Wishlist))
	for _, g := range u.Wishlist {
		out = append(out, goalProgress(*g, yearly))
	}
	return out
}

func goalProgress(goal core.WishlistGoal, yearlySavings float64) GoalProgress {
	target, saved := goal.TargetAmount.Float(), goal.SavedAmount.Float()
	avg := yearlySavings / 12
	if avg == 0 {
		avg = fallbackMonthlySavings
	}
	p := GoalProgress{
		Goal:       goal,
		Remaining:  target - saved,
		AvgMonthly: avg,
	}
	if target > 0 {
		p.Percent = saved / target * 100
	} else {
		p.Percent = 100
	}
	p.Complete = p.Percent >= 100
	if !p.Complete {
		p.MonthsLeft = int(math.Ceil(p.Remaining / avg))
	}
	return p
}
