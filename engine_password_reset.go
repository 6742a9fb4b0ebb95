package q63

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/uglydojo/q63/internal"
	internalflows "github.com/uglydojo/q63/internal/flows"
	"github.com/uglydojo/q63/internal/stores"
	"github.com/uglydojo/q63/mail"
)

// RequestPasswordReset describes the requestpasswordreset operation and its observable behavior.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// origin is the scheme and host the emailed link points back at. The call
// succeeds for unknown emails without storing or sending anything.
func (e *Engine) RequestPasswordReset(ctx context.Context, origin, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	return e.flows.RequestPasswordReset(ctx, origin, email)
}

// ConfirmPasswordReset describes the confirmpasswordreset operation and its observable behavior.
//
// ConfirmPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// ConfirmPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Existing sessions are left valid.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	return e.flows.ConfirmPasswordReset(ctx, token, newPassword)
}

func (e *Engine) passwordResetFlowDeps() internalflows.PasswordResetDeps {
	return internalflows.PasswordResetDeps{
		ResetTTL: e.config.PasswordReset.TTL,
		Limits: internalflows.AccountLimits{
			MinPasswordLength: minPasswordLength,
			MaxPasswordLength: maxPasswordLength,
			MaxNameLength:     maxNameLength,
		},
		Iterations:        e.passwordHash.Iterations(),
		Now:               e.now,
		GetAccount:        e.accounts.Get,
		IsAccountNotFound: isAccountNotFound,
		PutAccount:        e.accounts.Put,
		NewToken:          internal.NewToken,
		ValidToken:        internal.ValidToken,
		SaveReset:         e.resets.Save,
		GetReset:          e.resets.Get,
		IsResetGone: func(err error) bool {
			return errors.Is(err, stores.ErrResetNotFound) || errors.Is(err, stores.ErrResetExpired)
		},
		DeleteReset:           e.resets.Delete,
		GenerateSalt:          e.passwordHash.GenerateSalt,
		HashPassword:          e.passwordHash.Hash,
		DeliverReset:          e.deliverReset,
		PadEnumerationDelay:   e.padEnumerationDelay,
		MetricInc:             e.metricIncFunc,
		Metrics: internalflows.PasswordResetMetrics{
			PasswordResetRequest:        int(MetricPasswordResetRequest),
			PasswordResetConfirmSuccess: int(MetricPasswordResetConfirmSuccess),
			PasswordResetConfirmFailure: int(MetricPasswordResetConfirmFailure),
		},
		Errors: internalflows.PasswordResetErrors{
			EngineNotReady:      ErrEngineNotReady,
			EmailRequired:       ErrEmailRequired,
			ResetFieldsRequired: ErrResetFieldsRequired,
			PasswordLength:      ErrPasswordLength,
			InvalidResetToken:   ErrInvalidResetToken,
			ResetInvalid:        ErrResetInvalid,
			AccountNotFound:     ErrAccountNotFound,
		},
	}
}

func (e *Engine) deliverReset(ctx context.Context, email, origin, token string) {
	if e.outbox == nil {
		return
	}
	base, ok := e.resetOrigin(origin)
	if !ok {
		e.metricInc(MetricMailDropped)
		e.logger.WarnContext(ctx, "reset email not sent", slog.String("reason", "untrusted link origin"), slog.String("origin", origin))
		return
	}
	link := mail.ResetLink(base, e.config.PasswordReset.LinkEntry, token)
	if !e.outbox.Dispatch(ctx, mail.ResetMessage(email, link)) {
		e.metricInc(MetricMailDropped)
		e.logger.WarnContext(ctx, "reset email not queued", slog.String("reason", "outbox full or closed"))
	}
}

// resetOrigin picks the origin reset links are built from. A configured
// PublicOrigin always wins. A caller origin is accepted only when it is a
// plain http(s) origin whose host is allow-listed.
func (e *Engine) resetOrigin(origin string) (string, bool) {
	if public := e.config.PasswordReset.PublicOrigin; public != "" {
		return public, true
	}

	u, err := url.Parse(strings.TrimRight(origin, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.User != nil || u.Path != "" || u.RawQuery != "" {
		return "", false
	}
	for _, h := range e.config.PasswordReset.AllowedHosts {
		if strings.EqualFold(u.Host, h) {
			return u.Scheme + "://" + u.Host, true
		}
	}
	return "", false
}

// padEnumerationDelay waits until a random point in the configured window,
// measured from start, has passed. Work already done counts toward the wait.
func (e *Engine) padEnumerationDelay(ctx context.Context, start time.Time) error {
	minDelay := e.config.PasswordReset.EnumerationDelayMin
	maxDelay := e.config.PasswordReset.EnumerationDelayMax
	delay := minDelay

	if span := int64(maxDelay-minDelay) + 1; span > 1 {
		n, err := rand.Int(rand.Reader, big.NewInt(span))
		if err != nil {
			return err
		}
		delay += time.Duration(n.Int64())
	}

	remaining := delay - time.Since(start)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
