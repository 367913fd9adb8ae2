package service

import (
	"context"
	"errors"

	"safecommute/internal/app/notify"
	"safecommute/internal/common"
	"safecommute/internal/common/token"
	"safecommute/internal/domain/model"
	"safecommute/internal/domain/repository"
	"safecommute/internal/logging"
	"safecommute/internal/observability/metrics"
)

type Availability int

const (
	Available Availability = iota
	UsernameTaken
	EmailTaken
)

type RegistrationService struct {
	users         repository.UserRepository
	emails        repository.EmailIndexRepository
	verifications repository.VerificationRepository
	dispatcher    notify.Dispatcher
	verifyBaseURL string
	log           logging.Logger
}

func NewRegistrationService(
	users repository.UserRepository,
	emails repository.EmailIndexRepository,
	verifications repository.VerificationRepository,
	dispatcher notify.Dispatcher,
	verifyBaseURL string,
	log logging.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:         users,
		emails:        emails,
		verifications: verifications,
		dispatcher:    dispatcher,
		verifyBaseURL: verifyBaseURL,
		log:           log,
	}
}

// CheckAvailability checks username first, then the email index; the first
// collision wins, so a taken username is reported even when the email is
// taken too.
func (s *RegistrationService) CheckAvailability(ctx context.Context, username, email string) (Availability, error) {
	_, err := s.users.Find(ctx, username)
	if err == nil {
		return UsernameTaken, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return Available, common.Errorf("RegistrationService.CheckAvailability: %w", err)
	}

	_, err = s.emails.Lookup(ctx, email)
	if err == nil {
		return EmailTaken, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return Available, common.Errorf("RegistrationService.CheckAvailability: %w", err)
	}
	return Available, nil
}

// Register creates the user record, the email index entry and the
// verification entry, then offers the verification mail. The three writes are
// independent: a failure mid-sequence leaves the completed writes in place
// (no rollback), matching the store's non-transactional contract.
func (s *RegistrationService) Register(ctx context.Context, username, password, email string) (Availability, error) {
	avail, err := s.CheckAvailability(ctx, username, email)
	if err != nil || avail != Available {
		if avail != Available {
			metrics.AuthRegistrationsTotal.WithLabelValues("conflict").Inc()
		}
		return avail, err
	}

	marked := model.VerificationMarker + token.New()
	user := &model.User{
		Password:   password,
		Email:      email,
		Token:      marked,
		Favourites: "[]",
		Continues:  "[]",
	}

	if err := s.users.Create(ctx, username, user); err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues("error").Inc()
		return Available, common.Errorf("RegistrationService.Register: %w", err)
	}
	if err := s.emails.Reserve(ctx, email, username); err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues("error").Inc()
		return Available, common.Errorf("RegistrationService.Register: %w", err)
	}
	if err := s.verifications.Create(ctx, marked, username); err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues("error").Inc()
		return Available, common.Errorf("RegistrationService.Register: %w", err)
	}

	s.dispatcher.Enqueue(ctx, notify.VerificationMessage(email, s.verifyBaseURL+marked))
	metrics.AuthRegistrationsTotal.WithLabelValues("ok").Inc()
	s.log.Info(ctx, "user registered, verification pending", "username", username)
	return Available, nil
}

// CompleteVerification redeems a verification token: it mints the first
// session token, burns the verification entry and activates the account.
// This is the only path out of the pending-verification state. Redeeming the
// same token twice fails with not-found, never with re-verification.
func (s *RegistrationService) CompleteVerification(ctx context.Context, verificationToken string) (string, error) {
	username, err := s.verifications.Find(ctx, verificationToken)
	if err != nil {
		return "", common.Errorf("RegistrationService.CompleteVerification: %w", err)
	}

	session := token.New()
	if err := s.verifications.Consume(ctx, verificationToken); err != nil {
		return "", common.Errorf("RegistrationService.CompleteVerification: %w", err)
	}
	if err := s.users.UpdateToken(ctx, username, session); err != nil {
		// The entry is already burned; the account stays pending until an
		// operator intervenes. Consistent with the store's no-rollback model.
		return "", common.Errorf("RegistrationService.CompleteVerification: %w", err)
	}

	s.log.Info(ctx, "user verified", "username", username)
	return session, nil
}
