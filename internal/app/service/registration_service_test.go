package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safecommute/internal/common"
	"safecommute/internal/domain/model"
)

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.registration.Register(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		email    string
		want     Availability
	}{
		{"both free", "bob", "b@y.com", Available},
		{"username taken", "alice", "fresh@y.com", UsernameTaken},
		{"email taken", "bob", "a@x.com", EmailTaken},
		{"username collision wins over email collision", "alice", "a@x.com", UsernameTaken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.registration.CheckAvailability(ctx, tc.username, tc.email)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	avail, err := f.registration.Register(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, Available, avail)

	user, err := f.users.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "pw1", user.Password)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "[]", user.Favourites)
	assert.Equal(t, "[]", user.Continues)
	require.True(t, model.PendingVerification(user.Token))

	username, err := f.emails.Lookup(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	username, err = f.verifications.Find(ctx, user.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	sent := f.dispatcher.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.True(t, strings.Contains(sent[0].HTML, testVerifyBaseURL+user.Token))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	avail, err := f.registration.Register(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)
	require.Equal(t, Available, avail)

	avail, err = f.registration.Register(ctx, "alice", "pw2", "b@y.com")
	require.NoError(t, err)
	assert.Equal(t, UsernameTaken, avail)

	// The original record is untouched and no second mail goes out.
	user, err := f.users.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "pw1", user.Password)
	assert.Len(t, f.dispatcher.sent(), 1)
}

func TestCompleteVerification(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.registration.Register(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)
	user, err := f.users.Find(ctx, "alice")
	require.NoError(t, err)
	marked := user.Token

	session, err := f.registration.CompleteVerification(ctx, marked)
	require.NoError(t, err)
	assert.NotEqual(t, marked, session, "session token must differ from the verification token")
	assert.False(t, model.PendingVerification(session))

	user, err = f.users.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, session, user.Token)
	assert.True(t, f.auth.ValidateSession(ctx, "alice", session))

	// Single use: the second redemption fails like an unknown token and does
	// not rotate the session again.
	_, err = f.registration.CompleteVerification(ctx, marked)
	require.ErrorIs(t, err, common.ErrNotFound)
	user, err = f.users.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, session, user.Token)
}

func TestCompleteVerificationUnknownToken(t *testing.T) {
	f := newFixture()
	_, err := f.registration.CompleteVerification(context.Background(), model.VerificationMarker+"bogus")
	require.ErrorIs(t, err, common.ErrNotFound)
}
