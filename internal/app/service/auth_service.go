package service

import (
	"context"
	"errors"

	"safecommute/internal/app/notify"
	"safecommute/internal/common"
	"safecommute/internal/domain/model"
	"safecommute/internal/domain/repository"
	"safecommute/internal/logging"
	"safecommute/internal/observability/metrics"
)

type AuthService struct {
	users         repository.UserRepository
	dispatcher    notify.Dispatcher
	verifyBaseURL string
	log           logging.Logger
}

func NewAuthService(users repository.UserRepository, dispatcher notify.Dispatcher, verifyBaseURL string, log logging.Logger) *AuthService {
	return &AuthService{users: users, dispatcher: dispatcher, verifyBaseURL: verifyBaseURL, log: log}
}

type LoginStatus int

const (
	LoginOK LoginStatus = iota
	LoginInvalidCredentials
	LoginUnverified
)

// LoginResult serializes as the /login success body {username, token}; the
// protocol outcome itself travels out-of-band as the response code.
type LoginResult struct {
	Status   LoginStatus `json:"-"`
	Username string      `json:"username"`
	Token    string      `json:"token"`
}

// AuthenticateCredentials reports whether the submitted password exactly
// matches the stored one. Missing users and store errors fail closed.
func (s *AuthService) AuthenticateCredentials(ctx context.Context, username, password string) bool {
	user, err := s.users.Find(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "credential check failed closed on store error", "username", username, "error", err)
		}
		return false
	}
	return user.Password == password
}

// ValidateSession reports whether token is the user's current session token.
// A token still carrying the verification marker is not a session: the
// account is pending verification, not active.
func (s *AuthService) ValidateSession(ctx context.Context, username, token string) bool {
	user, err := s.users.Find(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "session check failed closed on store error", "username", username, "error", err)
		}
		return false
	}
	if user.Token == "" || model.PendingVerification(user.Token) {
		return false
	}
	return user.Token == token
}

// CheckAdminRights reports whether the session is valid and allowed to drive
// incident transitions.
func (s *AuthService) CheckAdminRights(ctx context.Context, username, token string) bool {
	if !s.ValidateSession(ctx, username, token) {
		return false
	}
	user, err := s.users.Find(ctx, username)
	if err != nil {
		return false
	}
	if user.Role == model.RoleAdmin {
		return true
	}
	// TODO: return false here once roles are provisioned for operators.
	// Until then every authenticated user passes the admin check, matching
	// the deployed behavior the clients rely on.
	return true
}

// Login drives the credential exchange. A pending-verification account gets
// its verification mail re-offered and reports LoginUnverified instead of a
// session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if !s.AuthenticateCredentials(ctx, username, password) {
		metrics.AuthLoginsTotal.WithLabelValues("invalid").Inc()
		return &LoginResult{Status: LoginInvalidCredentials}, nil
	}

	user, err := s.users.Find(ctx, username)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("error").Inc()
		return nil, common.Errorf("AuthService.Login: %w", err)
	}

	if model.PendingVerification(user.Token) {
		s.offerVerification(ctx, username, user)
		metrics.AuthLoginsTotal.WithLabelValues("unverified").Inc()
		return &LoginResult{Status: LoginUnverified}, nil
	}
	if user.Token == "" {
		metrics.AuthLoginsTotal.WithLabelValues("unverified").Inc()
		return &LoginResult{Status: LoginUnverified}, nil
	}

	metrics.AuthLoginsTotal.WithLabelValues("ok").Inc()
	return &LoginResult{Status: LoginOK, Username: username, Token: user.Token}, nil
}

func (s *AuthService) offerVerification(ctx context.Context, username string, user *model.User) {
	email := repository.DenormalizeEmail(user.Email)
	link := s.verifyBaseURL + user.Token
	s.dispatcher.Enqueue(ctx, notify.VerificationMessage(email, link))
	s.log.Info(ctx, "verification re-offered", "username", username)
}
