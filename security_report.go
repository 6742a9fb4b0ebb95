package q63

import "time"

// SecurityReport is a read-only snapshot of the engine's security posture,
// returned by [Engine.SecurityReport].
type SecurityReport struct {
	PasswordIterations  int
	SessionTTL          time.Duration
	PasswordResetTTL    time.Duration
	ResetMailEnabled    bool
	AdminExportEnabled  bool
	EnumerationDelayMin time.Duration
	EnumerationDelayMax time.Duration
	StoreKeyPrefix      string
}

// SecurityReport returns the settings an operator should review before
// exposing the engine. A nil engine reports the zero value.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		PasswordIterations:  e.config.Password.Iterations,
		SessionTTL:          e.config.Session.TTL,
		PasswordResetTTL:    e.config.PasswordReset.TTL,
		ResetMailEnabled:    e.MailEnabled(),
		AdminExportEnabled:  e.config.Admin.Key != "",
		EnumerationDelayMin: e.config.PasswordReset.EnumerationDelayMin,
		EnumerationDelayMax: e.config.PasswordReset.EnumerationDelayMax,
		StoreKeyPrefix:      e.config.Store.KeyPrefix,
	}
}
