package flows

import (
	"context"
	"time"

	"github.com/uglydojo/q63/internal/stores"
)

type PasswordResetMetrics struct {
	PasswordResetRequest        int
	PasswordResetConfirmSuccess int
	PasswordResetConfirmFailure int
}

type PasswordResetErrors struct {
	EngineNotReady      error
	EmailRequired       error
	ResetFieldsRequired error
	PasswordLength      error
	InvalidResetToken   error
	ResetInvalid        error
	AccountNotFound     error
}

type PasswordResetDeps struct {
	ResetTTL   time.Duration
	Limits     AccountLimits
	Iterations int

	Now func() time.Time

	GetAccount        func(context.Context, string) (*stores.Account, error)
	IsAccountNotFound func(error) bool
	PutAccount        func(context.Context, *stores.Account) error

	NewToken   func() (string, error)
	ValidToken func(string) bool

	SaveReset func(context.Context, string, *stores.ResetRecord, time.Duration) error
	GetReset  func(context.Context, string) (*stores.ResetRecord, error)
	// IsResetGone reports absent, consumed, and expired records alike.
	IsResetGone func(error) bool
	DeleteReset func(context.Context, string) error

	GenerateSalt func() (string, error)
	HashPassword func(string, string) string

	// DeliverReset hands the reset link to the mail collaborator. It must not
	// block on delivery.
	DeliverReset          func(ctx context.Context, email, origin, token string)
	// PadEnumerationDelay blocks until a randomized floor measured from
	// start has passed. Both outcomes of a reset request wait on it.
	PadEnumerationDelay func(ctx context.Context, start time.Time) error

	MetricInc func(int)

	Metrics PasswordResetMetrics
	Errors  PasswordResetErrors
}

// RunRequestPasswordReset issues a reset token for a registered email and
// hands the link to delivery. Unknown emails return nil after the same token
// generation. Both outcomes are padded to the same randomized floor.
func RunRequestPasswordReset(ctx context.Context, origin, email string, deps PasswordResetDeps) error {
	normalizePasswordResetDeps(&deps)

	if deps.GetAccount == nil || deps.NewToken == nil || deps.SaveReset == nil {
		return deps.Errors.EngineNotReady
	}
	if email == "" {
		return deps.Errors.EmailRequired
	}

	start := time.Now()
	normalized := NormalizeEmail(email)
	_, err := deps.GetAccount(ctx, normalized)
	if err != nil {
		if !deps.IsAccountNotFound(err) {
			return err
		}
		if _, genErr := deps.NewToken(); genErr != nil {
			return genErr
		}
		if padErr := deps.PadEnumerationDelay(ctx, start); padErr != nil {
			return padErr
		}
		deps.MetricInc(deps.Metrics.PasswordResetRequest)
		return nil
	}

	token, err := deps.NewToken()
	if err != nil {
		return err
	}

	record := &stores.ResetRecord{
		Email:     normalized,
		ExpiresAt: deps.Now().Add(deps.ResetTTL).UTC(),
	}
	if err := deps.SaveReset(ctx, token, record, deps.ResetTTL); err != nil {
		return err
	}

	deps.DeliverReset(ctx, normalized, origin, token)
	if padErr := deps.PadEnumerationDelay(ctx, start); padErr != nil {
		return padErr
	}
	deps.MetricInc(deps.Metrics.PasswordResetRequest)
	return nil
}

// RunConfirmPasswordReset consumes a reset token and rewrites the account's
// salt and digest. The token is deleted only after the account write.
func RunConfirmPasswordReset(ctx context.Context, token, newPassword string, deps PasswordResetDeps) error {
	normalizePasswordResetDeps(&deps)

	if deps.GetReset == nil || deps.DeleteReset == nil || deps.GetAccount == nil || deps.PutAccount == nil || deps.GenerateSalt == nil || deps.HashPassword == nil {
		return deps.Errors.EngineNotReady
	}

	fail := func(err error) error {
		deps.MetricInc(deps.Metrics.PasswordResetConfirmFailure)
		return err
	}

	if token == "" || newPassword == "" {
		return fail(deps.Errors.ResetFieldsRequired)
	}
	if n := TextLength(newPassword); n < deps.Limits.MinPasswordLength || n > deps.Limits.MaxPasswordLength {
		return fail(deps.Errors.PasswordLength)
	}
	if !deps.ValidToken(token) {
		return fail(deps.Errors.InvalidResetToken)
	}

	record, err := deps.GetReset(ctx, token)
	if err != nil {
		if deps.IsResetGone(err) {
			return fail(deps.Errors.ResetInvalid)
		}
		return fail(err)
	}

	account, err := deps.GetAccount(ctx, record.Email)
	if err != nil {
		if deps.IsAccountNotFound(err) {
			return fail(deps.Errors.AccountNotFound)
		}
		return fail(err)
	}

	salt, err := deps.GenerateSalt()
	if err != nil {
		return fail(err)
	}
	account.Salt = salt
	account.PasswordHash = deps.HashPassword(newPassword, salt)
	account.Iterations = deps.Iterations

	if err := deps.PutAccount(ctx, account); err != nil {
		return fail(err)
	}
	if err := deps.DeleteReset(ctx, token); err != nil {
		return fail(err)
	}

	deps.MetricInc(deps.Metrics.PasswordResetConfirmSuccess)
	return nil
}

func normalizePasswordResetDeps(deps *PasswordResetDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ResetTTL <= 0 {
		deps.ResetTTL = time.Hour
	}
	if deps.ValidToken == nil {
		deps.ValidToken = func(string) bool { return true }
	}
	if deps.IsAccountNotFound == nil {
		deps.IsAccountNotFound = func(error) bool { return false }
	}
	if deps.IsResetGone == nil {
		deps.IsResetGone = func(error) bool { return false }
	}
	if deps.DeliverReset == nil {
		deps.DeliverReset = func(context.Context, string, string, string) {}
	}
	if deps.PadEnumerationDelay == nil {
		deps.PadEnumerationDelay = func(context.Context, time.Time) error { return nil }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.Limits.MinPasswordLength <= 0 {
		deps.Limits.MinPasswordLength = 8
	}
	if deps.Limits.MaxPasswordLength <= 0 {
		deps.Limits.MaxPasswordLength = 256
	}
}
