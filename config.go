package q63

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/uglydojo/q63/mail"
	"github.com/uglydojo/q63/password"
)

// Config holds every engine tunable. It is copied by [Builder.WithConfig]
// and treated as immutable once [Builder.Build] returns.
type Config struct {
	Session       SessionConfig
	Password      PasswordConfig
	PasswordReset PasswordResetConfig
	Progress      ProgressConfig
	Admin         AdminConfig
	Mail          MailConfig
	Metrics       MetricsConfig
	Store         StoreConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls bearer session lifetime.
type SessionConfig struct {
	TTL time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by q63 APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Iterations int
}

// PasswordResetConfig controls the reset handshake.
//
// LinkEntry is the page the emailed link points at, relative to the link
// origin. PublicOrigin, when set, is the only origin links are built from.
// Without it a caller-supplied origin is used only if its host is listed in
// AllowedHosts; otherwise no mail is sent. Every reset request, for a known
// email or not, returns no sooner than a random point between the
// enumeration delay bounds.
type PasswordResetConfig struct {
	TTL                 time.Duration
	LinkEntry           string
	PublicOrigin        string
	AllowedHosts        []string
	EnumerationDelayMin time.Duration
	EnumerationDelayMax time.Duration
}

// ProgressConfig lists the practices a check-in may record. Unknown keys in
// an update are dropped.
type ProgressConfig struct {
	Practices []string
}

// AdminConfig holds the static export secret. An empty Key disables export.
type AdminConfig struct {
	Key string
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig controls the outbound reset-mail queue. When SMTP is not
// enabled and no sender is supplied to the builder, reset links are not sent.
type MailConfig struct {
	BufferSize  int
	DropIfFull  bool
	SendTimeout time.Duration
	SMTP        mail.SMTPConfig
}

// MetricsConfig defines a public type used by q63 APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// StoreConfig controls key layout in the backing store.
type StoreConfig struct {
	KeyPrefix string
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Iterations: password.DefaultIterations,
		},
		PasswordReset: PasswordResetConfig{
			TTL:                 time.Hour,
			LinkEntry:           "Q63_Tracker.html",
			EnumerationDelayMin: 20 * time.Millisecond,
			EnumerationDelayMax: 40 * time.Millisecond,
		},
		Progress: ProgressConfig{
			Practices: append([]string(nil), Practices...),
		},
		Mail: MailConfig{
			BufferSize:  256,
			DropIfFull:  true,
			SendTimeout: 10 * time.Second,
			SMTP: mail.SMTPConfig{
				Host:     "smtp.resend.com",
				Port:     465,
				Username: "resend",
				From:     "Ugly Dojo <noreply@uglydojo.com>",
			},
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Progress.Practices = append([]string(nil), cfg.Progress.Practices...)
	out.PasswordReset.AllowedHosts = append([]string(nil), cfg.PasswordReset.AllowedHosts...)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Session
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}

	// Password
	if err := (password.Config{Iterations: c.Password.Iterations}).Validate(); err != nil {
		return err
	}

	// Password Reset
	if c.PasswordReset.TTL <= 0 {
		return errors.New("PasswordReset TTL must be > 0")
	}
	if c.PasswordReset.LinkEntry == "" {
		return errors.New("PasswordReset LinkEntry must be set")
	}
	if c.PasswordReset.PublicOrigin != "" {
		if err := validateOrigin(c.PasswordReset.PublicOrigin); err != nil {
			return err
		}
	}
	for _, h := range c.PasswordReset.AllowedHosts {
		if h == "" || strings.ContainsAny(h, "/ ") {
			return errors.New("PasswordReset AllowedHosts entries must be bare host[:port] values")
		}
	}
	if c.PasswordReset.EnumerationDelayMin < 0 {
		return errors.New("PasswordReset EnumerationDelayMin must be >= 0")
	}
	if c.PasswordReset.EnumerationDelayMax < c.PasswordReset.EnumerationDelayMin {
		return errors.New("PasswordReset EnumerationDelayMax must be >= EnumerationDelayMin")
	}

	// Progress
	if len(c.Progress.Practices) == 0 {
		return errors.New("Progress Practices must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Progress.Practices))
	for _, p := range c.Progress.Practices {
		if p == "" {
			return errors.New("Progress Practices must not contain empty names")
		}
		if _, dup := seen[p]; dup {
			return errors.New("Progress Practices must be unique")
		}
		seen[p] = struct{}{}
	}

	// Mail
	if c.Mail.BufferSize <= 0 {
		return errors.New("Mail BufferSize must be > 0")
	}
	if c.Mail.SendTimeout <= 0 {
		return errors.New("Mail SendTimeout must be > 0")
	}
	if c.Mail.SMTP.Enabled() && c.Mail.SMTP.Port <= 0 {
		return errors.New("Mail SMTP Port must be > 0 when SMTP is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return errors.New("PasswordReset PublicOrigin must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("PasswordReset PublicOrigin must use http or https")
	}
	if u.Host == "" || u.User != nil {
		return errors.New("PasswordReset PublicOrigin must name a host")
	}
	if strings.Trim(u.Path, "/") != "" || u.RawQuery != "" || u.Fragment != "" {
		return errors.New("PasswordReset PublicOrigin must not carry a path, query or fragment")
	}
	return nil
}
