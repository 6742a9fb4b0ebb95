package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Account.GetAccount != nil
}

func (s Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	return RunRegister(ctx, req, s.deps.Account)
}

func (s Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	return RunLogin(ctx, req, s.deps.Account)
}

func (s Service) RequestPasswordReset(ctx context.Context, origin, email string) error {
	return RunRequestPasswordReset(ctx, origin, email, s.deps.PasswordReset)
}

func (s Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return RunConfirmPasswordReset(ctx, token, newPassword, s.deps.PasswordReset)
}

func (s Service) Progress(ctx context.Context, email string) (*ProgressView, error) {
	return RunGetProgress(ctx, email, s.deps.Progress)
}

func (s Service) UpdateProgress(ctx context.Context, email string, day int, practices map[string]any) (*DayResult, error) {
	return RunUpdateProgress(ctx, email, day, practices, s.deps.Progress)
}
