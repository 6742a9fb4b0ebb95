package q63

import (
	"context"
	"errors"
	"regexp"

	internalflows "github.com/uglydojo/q63/internal/flows"
	"github.com/uglydojo/q63/internal/stores"
)

var emailPattern = regexp.MustCompile(`^[^\s\v\x{FEFF}\p{Z}@]+@[^\s\v\x{FEFF}\p{Z}@]+\.[^\s\v\x{FEFF}\p{Z}@]+$`)

// Digest compared against when the account does not exist. It never matches
// a derivation, so the result is discarded.
const (
	dummySalt   = "00000000000000000000000000000000"
	dummyDigest = "0000000000000000000000000000000000000000000000000000000000000000"
)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	res, err := e.flows.Register(ctx, internalflows.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	return toAuthResult(res, err)
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Unknown accounts and wrong passwords both return [ErrInvalidCredentials]
// after one full-cost derivation.
func (e *Engine) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	res, err := e.flows.Login(ctx, internalflows.LoginRequest{
		Email:    email,
		Password: password,
	})
	return toAuthResult(res, err)
}

func toAuthResult(res *internalflows.AuthResult, err error) (*AuthResult, error) {
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrEngineNotReady
	}
	return &AuthResult{
		Token: res.Token,
		User: User{
			Email: res.Email,
			Name:  res.Name,
		},
	}, nil
}

func isAccountNotFound(err error) bool {
	return errors.Is(err, stores.ErrAccountNotFound)
}

func (e *Engine) issueSession(ctx context.Context, email string) (string, error) {
	token, _, err := e.sessionStore.Issue(ctx, email)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricSessionCreated)
	return token, nil
}

func (e *Engine) accountFlowDeps() internalflows.AccountDeps {
	return internalflows.AccountDeps{
		Limits: internalflows.AccountLimits{
			MinPasswordLength: minPasswordLength,
			MaxPasswordLength: maxPasswordLength,
			MaxNameLength:     maxNameLength,
		},
		Iterations:        e.passwordHash.Iterations(),
		Now:               e.now,
		ValidEmail:        emailPattern.MatchString,
		GetAccount:        e.accounts.Get,
		IsAccountNotFound: isAccountNotFound,
		PutAccount:        e.accounts.Put,
		PutProgress:       e.accounts.PutProgress,
		AddEmail:          e.accounts.AddEmail,
		GenerateSalt:      e.passwordHash.GenerateSalt,
		HashPassword:      e.passwordHash.Hash,
		VerifyPassword:    e.passwordHash.VerifyCost,
		BurnVerify: func(password string) {
			_ = e.passwordHash.Verify(password, dummySalt, dummyDigest)
		},
		IssueSession: e.issueSession,
		MetricInc:    e.metricIncFunc,
		Metrics: internalflows.AccountMetrics{
			RegisterSuccess:  int(MetricRegisterSuccess),
			RegisterRejected: int(MetricRegisterRejected),
			RegisterConflict: int(MetricRegisterConflict),
			LoginSuccess:     int(MetricLoginSuccess),
			LoginFailure:     int(MetricLoginFailure),
		},
		Errors: internalflows.AccountErrors{
			EngineNotReady:         ErrEngineNotReady,
			RegisterFieldsRequired: ErrRegisterFieldsRequired,
			LoginFieldsRequired:    ErrLoginFieldsRequired,
			InvalidEmail:           ErrInvalidEmail,
			PasswordLength:         ErrPasswordLength,
			NameLength:             ErrNameLength,
			AccountExists:          ErrAccountExists,
			InvalidCredentials:     ErrInvalidCredentials,
		},
	}
}
