// internal/gate/gate_test.go
package gate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowSingleBoundary(t *testing.T) {
	g := New(NewMemoryStore(), 15, nil)
	userID := uuid.New()

	assert.NoError(t, g.AllowSingle(userID, 0))
	assert.NoError(t, g.AllowSingle(userID, 14))
	assert.ErrorIs(t, g.AllowSingle(userID, 15), ErrQuotaExceeded)
	assert.ErrorIs(t, g.AllowSingle(userID, 20), ErrQuotaExceeded)
}

func TestAllowBulkBoundary(t *testing.T) {
	g := New(NewMemoryStore(), 15, nil)
	userID := uuid.New()

	// Filling up to the limit exactly is allowed, one past is not.
	assert.NoError(t, g.AllowBulk(userID, 13, 2))
	assert.ErrorIs(t, g.AllowBulk(userID, 13, 3), ErrQuotaExceeded)
	assert.NoError(t, g.AllowBulk(userID, 0, 15))
	assert.ErrorIs(t, g.AllowBulk(userID, 0, 16), ErrQuotaExceeded)
}

func TestSubmitPassphraseNormalizesCode(t *testing.T) {
	g := New(NewMemoryStore(), 15, []string{"EnjoyMyFriend"})
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, g.SubmitPassphrase(ctx, userID, "  enjoymyfriend  ", nil))
	assert.True(t, g.Unlocked(userID))
}

func TestSubmitPassphraseRejectsWrongCode(t *testing.T) {
	g := New(NewMemoryStore(), 15, []string{"ENJOYMYFRIEND"})
	userID := uuid.New()

	retried := false
	err := g.SubmitPassphrase(context.Background(), userID, "LETMEIN", func(context.Context) error {
		retried = true
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidPassphrase)
	assert.False(t, retried)
	assert.False(t, g.Unlocked(userID))
}

func TestSubmitPassphraseRetriesBlockedOperation(t *testing.T) {
	g := New(NewMemoryStore(), 15, []string{"ENJOYMYFRIEND"})
	userID := uuid.New()

	// The retry continuation runs after the flag is persisted, so the
	// previously blocked operation now passes the gate.
	var sawUnlocked bool
	err := g.SubmitPassphrase(context.Background(), userID, "ENJOYMYFRIEND", func(ctx context.Context) error {
		sawUnlocked = g.Unlocked(userID)
		return g.AllowSingle(userID, 40)
	})
	require.NoError(t, err)
	assert.True(t, sawUnlocked)
}

func TestSubmitPassphrasePropagatesRetryError(t *testing.T) {
	g := New(NewMemoryStore(), 15, []string{"ENJOYMYFRIEND"})
	retryErr := errors.New("insert failed")

	err := g.SubmitPassphrase(context.Background(), uuid.New(), "ENJOYMYFRIEND", func(context.Context) error {
		return retryErr
	})
	assert.ErrorIs(t, err, retryErr)
}

func TestUnlockedLiftsBothGates(t *testing.T) {
	store := NewMemoryStore()
	g := New(store, 15, nil)
	userID := uuid.New()

	require.NoError(t, store.SetUnlocked(userID))
	assert.NoError(t, g.AllowSingle(userID, 100))
	assert.NoError(t, g.AllowBulk(userID, 100, 100))
}

func TestNewDefaultsInvalidLimit(t *testing.T) {
	g := New(NewMemoryStore(), 0, nil)
	assert.Equal(t, DefaultLimit, g.Limit())
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "unlocked.json")
	userID := uuid.New()

	fs, err := NewFileStore(path)
	require.NoError(t, err)

	unlocked, err := fs.IsUnlocked(userID)
	require.NoError(t, err)
	assert.False(t, unlocked)

	require.NoError(t, fs.SetUnlocked(userID))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	unlocked, err = reopened.IsUnlocked(userID)
	require.NoError(t, err)
	assert.True(t, unlocked)

	// Other users stay locked.
	unlocked, err = reopened.IsUnlocked(uuid.New())
	require.NoError(t, err)
	assert.False(t, unlocked)
}
