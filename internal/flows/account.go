package flows

import (
	"context"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/uglydojo/q63/internal/stores"
)

type RegisterRequest struct {
	Email    string
	Name     string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	Email string
	Name  string
}

type AccountLimits struct {
	MinPasswordLength int
	MaxPasswordLength int
	MaxNameLength     int
}

type AccountMetrics struct {
	RegisterSuccess  int
	RegisterRejected int
	RegisterConflict int
	LoginSuccess     int
	LoginFailure     int
}

type AccountErrors struct {
	EngineNotReady         error
	RegisterFieldsRequired error
	LoginFieldsRequired    error
	InvalidEmail           error
	PasswordLength         error
	NameLength             error
	AccountExists          error
	InvalidCredentials     error
}

type AccountDeps struct {
	Limits     AccountLimits
	Iterations int

	Now        func() time.Time
	ValidEmail func(string) bool

	GetAccount        func(context.Context, string) (*stores.Account, error)
	IsAccountNotFound func(error) bool
	PutAccount        func(context.Context, *stores.Account) error
	PutProgress       func(context.Context, string, *stores.Progress) error
	AddEmail          func(context.Context, string) error

	GenerateSalt   func() (string, error)
	HashPassword   func(string, string) string
	VerifyPassword func(string, string, string, int) bool
	// BurnVerify runs one full-cost derivation for an unknown account so both
	// login failure branches pay the KDF.
	BurnVerify func(string)

	IssueSession func(context.Context, string) (string, error)

	MetricInc func(int)

	Metrics AccountMetrics
	Errors  AccountErrors
}

// NormalizeEmail lowercases and trims an email into its account key form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TextLength counts UTF-16 code units, the unit stored clients have always
// measured password and name limits in.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func RunRegister(ctx context.Context, req RegisterRequest, deps AccountDeps) (*AuthResult, error) {
	normalizeAccountDeps(&deps)

	if deps.GetAccount == nil || deps.PutAccount == nil || deps.GenerateSalt == nil || deps.HashPassword == nil || deps.IssueSession == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if req.Email == "" || req.Name == "" || req.Password == "" {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return nil, deps.Errors.RegisterFieldsRequired
	}

	email := NormalizeEmail(req.Email)
	if !deps.ValidEmail(email) {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return nil, deps.Errors.InvalidEmail
	}

	if n := TextLength(req.Password); n < deps.Limits.MinPasswordLength || n > deps.Limits.MaxPasswordLength {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return nil, deps.Errors.PasswordLength
	}

	name := strings.TrimSpace(req.Name)
	if n := TextLength(name); n < 1 || n > deps.Limits.MaxNameLength {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return nil, deps.Errors.NameLength
	}

	_, err := deps.GetAccount(ctx, email)
	if err == nil {
		deps.MetricInc(deps.Metrics.RegisterConflict)
		return nil, deps.Errors.AccountExists
	}
	if !deps.IsAccountNotFound(err) {
		return nil, err
	}

	salt, err := deps.GenerateSalt()
	if err != nil {
		return nil, err
	}

	account := &stores.Account{
		Email:        email,
		Name:         name,
		PasswordHash: deps.HashPassword(req.Password, salt),
		Salt:         salt,
		Iterations:   deps.Iterations,
		StartDate:    nil,
		CreatedAt:    deps.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := deps.PutAccount(ctx, account); err != nil {
		return nil, err
	}
	if err := deps.PutProgress(ctx, email, &stores.Progress{Days: map[string]stores.DayEntry{}}); err != nil {
		return nil, err
	}
	if err := deps.AddEmail(ctx, email); err != nil {
		return nil, err
	}

	token, err := deps.IssueSession(ctx, email)
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	return &AuthResult{
		Token: token,
		Email: email,
		Name:  name,
	}, nil
}

func RunLogin(ctx context.Context, req LoginRequest, deps AccountDeps) (*AuthResult, error) {
	normalizeAccountDeps(&deps)

	if deps.GetAccount == nil || deps.VerifyPassword == nil || deps.IssueSession == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if req.Email == "" || req.Password == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.LoginFieldsRequired
	}
	if TextLength(req.Password) > deps.Limits.MaxPasswordLength {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.InvalidCredentials
	}

	email := NormalizeEmail(req.Email)
	account, err := deps.GetAccount(ctx, email)
	if err != nil {
		if !deps.IsAccountNotFound(err) {
			return nil, err
		}
		deps.BurnVerify(req.Password)
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.InvalidCredentials
	}

	if !deps.VerifyPassword(req.Password, account.Salt, account.PasswordHash, account.Iterations) {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return nil, deps.Errors.InvalidCredentials
	}

	token, err := deps.IssueSession(ctx, email)
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	return &AuthResult{
		Token: token,
		Email: email,
		Name:  account.Name,
	}, nil
}

func normalizeAccountDeps(deps *AccountDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ValidEmail == nil {
		deps.ValidEmail = func(string) bool { return true }
	}
	if deps.IsAccountNotFound == nil {
		deps.IsAccountNotFound = func(error) bool { return false }
	}
	if deps.PutProgress == nil {
		deps.PutProgress = func(context.Context, string, *stores.Progress) error { return nil }
	}
	if deps.AddEmail == nil {
		deps.AddEmail = func(context.Context, string) error { return nil }
	}
	if deps.BurnVerify == nil {
		deps.BurnVerify = func(string) {}
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
	if deps.Limits.MaxNameLength <= 0 {
		deps.Limits.MaxNameLength = 100
	}
}
