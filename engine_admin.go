package q63

import (
	"context"

	"github.com/uglydojo/q63/password"
)

// ExportEmails returns every registered email in registration order.
//
// key must equal the configured admin key under a constant-time compare. An
// empty key or an unset admin key always returns [ErrAdminUnauthorized].
func (e *Engine) ExportEmails(ctx context.Context, key string) (*EmailExport, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	configured := e.config.Admin.Key
	if key == "" || configured == "" || !password.ConstantTimeEqual(key, configured) {
		e.metricInc(MetricAdminRejected)
		return nil, ErrAdminUnauthorized
	}

	emails, err := e.accounts.Emails(ctx)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricAdminExport)
	return &EmailExport{
		Count:  len(emails),
		Emails: emails,
	}, nil
}
