package flows

import (
	"context"
	"strconv"
	"time"

	"github.com/uglydojo/q63/internal/stores"
)

type ProgressView struct {
	StartDate *string
	Name      string
	Progress  *stores.Progress
}

type DayResult struct {
	Day       int
	Score     int
	Practices map[string]bool
}

type ProgressMetrics struct {
	ProgressUpdate int
}

type ProgressErrors struct {
	EngineNotReady    error
	InvalidDay        error
	PracticesRequired error
}

type ProgressDeps struct {
	MaxDay    int
	Practices []string

	Now func() time.Time

	GetAccount        func(context.Context, string) (*stores.Account, error)
	IsAccountNotFound func(error) bool
	PutAccount        func(context.Context, *stores.Account) error
	GetProgress       func(context.Context, string) (*stores.Progress, error)
	PutProgress       func(context.Context, string, *stores.Progress) error

	MetricInc func(int)

	Metrics ProgressMetrics
	Errors  ProgressErrors
}

// RunGetProgress returns the caller's progress with the profile fields the
// tracker shows. A missing account yields an empty name and no start date.
func RunGetProgress(ctx context.Context, email string, deps ProgressDeps) (*ProgressView, error) {
	normalizeProgressDeps(&deps)

	if deps.GetAccount == nil || deps.GetProgress == nil {
		return nil, deps.Errors.EngineNotReady
	}

	view := &ProgressView{}
	account, err := deps.GetAccount(ctx, email)
	switch {
	case err == nil:
		view.StartDate = account.StartDate
		view.Name = account.Name
	case !deps.IsAccountNotFound(err):
		return nil, err
	}

	progress, err := deps.GetProgress(ctx, email)
	if err != nil {
		return nil, err
	}
	view.Progress = progress

	return view, nil
}

// RunUpdateProgress records the practices completed on day. Only known
// practices are kept, each true only when the input is boolean true. The
// first day-1 check-in also stamps the account's start date.
func RunUpdateProgress(ctx context.Context, email string, day int, practices map[string]any, deps ProgressDeps) (*DayResult, error) {
	normalizeProgressDeps(&deps)

	if deps.GetAccount == nil || deps.PutAccount == nil || deps.GetProgress == nil || deps.PutProgress == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if day < 1 || day > deps.MaxDay {
		return nil, deps.Errors.InvalidDay
	}
	if practices == nil {
		return nil, deps.Errors.PracticesRequired
	}

	sanitized := make(map[string]bool, len(deps.Practices))
	score := 0
	for _, name := range deps.Practices {
		done, _ := practices[name].(bool)
		sanitized[name] = done
		if done {
			score++
		}
	}

	now := deps.Now().UTC()

	progress, err := deps.GetProgress(ctx, email)
	if err != nil {
		return nil, err
	}
	progress.Days[strconv.Itoa(day)] = stores.DayEntry{
		Practices: sanitized,
		Score:     score,
		Date:      now.Format(time.RFC3339Nano),
	}
	if err := deps.PutProgress(ctx, email, progress); err != nil {
		return nil, err
	}

	if day == 1 {
		account, err := deps.GetAccount(ctx, email)
		switch {
		case err == nil:
			if account.StartDate == nil {
				startDate := now.Format(time.DateOnly)
				account.StartDate = &startDate
				if err := deps.PutAccount(ctx, account); err != nil {
					return nil, err
				}
			}
		case !deps.IsAccountNotFound(err):
			return nil, err
		}
	}

	deps.MetricInc(deps.Metrics.ProgressUpdate)
	return &DayResult{
		Day:       day,
		Score:     score,
		Practices: sanitized,
	}, nil
}

func normalizeProgressDeps(deps *ProgressDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MaxDay <= 0 {
		deps.MaxDay = 63
	}
	if deps.IsAccountNotFound == nil {
		deps.IsAccountNotFound = func(error) bool { return false }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}
