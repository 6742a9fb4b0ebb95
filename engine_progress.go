package q63

import (
	"context"

	internalflows "github.com/uglydojo/q63/internal/flows"
)

// Progress returns the check-ins recorded for email along with the profile
// fields the tracker shows. email is the value returned by [Engine.ValidateSession].
func (e *Engine) Progress(ctx context.Context, email string) (*ProgressView, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	view, err := e.flows.Progress(ctx, email)
	if err != nil {
		return nil, err
	}
	return &ProgressView{
		StartDate: view.StartDate,
		Name:      view.Name,
		Progress:  view.Progress,
	}, nil
}

// UpdateProgress describes the updateprogress operation and its observable behavior.
//
// UpdateProgress may return an error when input validation, dependency calls, or security checks fail.
// UpdateProgress does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// practices is the decoded request object. Each configured practice is
// recorded true only when its value is the boolean true; other keys are
// ignored. A nil map returns [ErrPracticesRequired].
func (e *Engine) UpdateProgress(ctx context.Context, email string, day int, practices map[string]any) (*DayResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	res, err := e.flows.UpdateProgress(ctx, email, day, practices)
	if err != nil {
		return nil, err
	}
	return &DayResult{
		Day:       res.Day,
		Score:     res.Score,
		Practices: res.Practices,
	}, nil
}

func (e *Engine) progressFlowDeps() internalflows.ProgressDeps {
	return internalflows.ProgressDeps{
		MaxDay:            MaxDay,
		Practices:         e.config.Progress.Practices,
		Now:               e.now,
		GetAccount:        e.accounts.Get,
		IsAccountNotFound: isAccountNotFound,
		PutAccount:        e.accounts.Put,
		GetProgress:       e.accounts.Progress,
		PutProgress:       e.accounts.PutProgress,
		MetricInc:         e.metricIncFunc,
		Metrics: internalflows.ProgressMetrics{
			ProgressUpdate: int(MetricProgressUpdate),
		},
		Errors: internalflows.ProgressErrors{
			EngineNotReady:    ErrEngineNotReady,
			InvalidDay:        ErrInvalidDay,
			PracticesRequired: ErrPracticesRequired,
		},
	}
}
