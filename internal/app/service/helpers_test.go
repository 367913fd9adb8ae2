package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"safecommute/internal/domain/repository"
	"safecommute/internal/logging"
	"safecommute/internal/platform/docstore"
	"safecommute/internal/platform/mail"
)

func testLogger() logging.Logger {
	return logging.Wrap(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// recordingDispatcher captures enqueued messages synchronously so tests can
// assert on notification side effects without a queue.
type recordingDispatcher struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (d *recordingDispatcher) Enqueue(ctx context.Context, msg mail.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *recordingDispatcher) sent() []mail.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]mail.Message, len(d.messages))
	copy(out, d.messages)
	return out
}

const testVerifyBaseURL = "https://safecommute.web.app/auth/"

type fixture struct {
	store         *docstore.MemoryStore
	dispatcher    *recordingDispatcher
	users         repository.UserRepository
	emails        repository.EmailIndexRepository
	verifications repository.VerificationRepository
	incidents     repository.IncidentRepository
	activity      repository.ActivityLogRepository

	auth         *AuthService
	registration *RegistrationService
	incidentSvc  *IncidentService
}

func newFixture() *fixture {
	store := docstore.NewMemoryStore()
	dispatcher := &recordingDispatcher{}
	log := testLogger()

	f := &fixture{
		store:         store,
		dispatcher:    dispatcher,
		users:         repository.NewDocUserRepository(store),
		emails:        repository.NewDocEmailIndexRepository(store),
		verifications: repository.NewDocVerificationRepository(store),
		incidents:     repository.NewDocIncidentRepository(store),
		activity:      repository.NewDocActivityLogRepository(store),
	}
	f.auth = NewAuthService(f.users, dispatcher, testVerifyBaseURL, log)
	f.registration = NewRegistrationService(f.users, f.emails, f.verifications, dispatcher, testVerifyBaseURL, log)
	f.incidentSvc = NewIncidentService(f.incidents, f.activity, f.auth, dispatcher, "ops@example.com", log)
	return f
}
