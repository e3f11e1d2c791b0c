package initializers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/config"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"
	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	now := time.Now()

	require.NoError(t, s.Users().Insert(ctx, &models.User{ID: "stale", Email: "stale@x.com"}))
	require.NoError(t, s.Users().Insert(ctx, &models.User{ID: "done", Email: "done@x.com", IsVerified: true}))

	require.NoError(t, s.Challenges().Put(ctx, &models.Challenge{UserID: "done", Kind: models.ChallengeOTP, Secret: "123456", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Challenges().Put(ctx, &models.Challenge{UserID: "stale", Kind: models.ChallengeOTP, Secret: "654321", ExpiresAt: now.Add(time.Minute)}))

	// nothing is old enough yet
	cleanup(ctx, s, now, 24*time.Hour, discard())

	_, err := s.Challenges().Get(ctx, "done")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Challenges().Get(ctx, "stale")
	assert.NoError(t, err)
	_, err = s.Users().FindByID(ctx, "stale")
	assert.NoError(t, err)

	cleanup(ctx, s, now.Add(25*time.Hour), 24*time.Hour, discard())

	_, err = s.Users().FindByID(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Users().FindByID(ctx, "done")
	assert.NoError(t, err)
}

func TestStartCleanupStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := store.NewMemoryStore()
	require.NoError(t, s.Challenges().Put(context.Background(), &models.Challenge{
		UserID: "u", Kind: models.ChallengeOTP, Secret: "1", ExpiresAt: time.Now().Add(-time.Second),
	}))

	StartCleanup(ctx, s, 10*time.Millisecond, time.Hour, discard())

	assert.Eventually(t, func() bool {
		_, err := s.Challenges().Get(context.Background(), "u")
		return err != nil
	}, time.Second, 10*time.Millisecond)
	cancel()
}

func TestConnectToDb(t *testing.T) {
	ctx := context.Background()

	s, err := ConnectToDb(ctx, config.DBConfig{Driver: "memory"}, discard())
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	s, err = ConnectToDb(ctx, config.DBConfig{Driver: "sqlite", URL: "file::memory:?cache=shared"}, discard())
	require.NoError(t, err)
	assert.IsType(t, &store.GormStore{}, s)

	require.NoError(t, s.Users().Insert(ctx, &models.User{ID: "u-1", Email: "a@x.com"}))
	_, err = s.Users().FindByEmail(ctx, "a@x.com")
	assert.NoError(t, err)
	assert.NoError(t, s.Close(ctx))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, true).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&buf, false).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
