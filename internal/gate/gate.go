// internal/gate/gate.go

// Package gate caps the number of products an account may create and
// lifts the cap once a valid access code has been submitted. The check is
// a soft usage nudge, not a security control: the allow-list ships with
// the application and the unlocked flag lives in a host-supplied local
// store, never in the relational database.
package gate

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrQuotaExceeded is a control-flow signal, not a failure: callers
	// redirect to the access-code prompt instead of reporting an error.
	ErrQuotaExceeded = errors.New("product quota exceeded")

	ErrInvalidPassphrase = errors.New("invalid access code")
)

// DefaultLimit is the number of products a locked account may hold.
const DefaultLimit = 15

// Store persists the per-user unlocked flag. Implementations are
// host-local (see FileStore); the flag is never synced to the remote
// store.
type Store interface {
	IsUnlocked(userID uuid.UUID) (bool, error)
	SetUnlocked(userID uuid.UUID) error
}

type Gate struct {
	store       Store
	limit       int
	passphrases []string
}

// New builds a gate over the given persistence port. Passphrases are
// normalized once (trimmed, upper-cased) so submissions can be compared
// case-insensitively.
func New(store Store, limit int, passphrases []string) *Gate {
	normalized := make([]string, 0, len(passphrases))
	for _, p := range passphrases {
		normalized = append(normalized, normalize(p))
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Gate{store: store, limit: limit, passphrases: normalized}
}

func (g *Gate) Limit() int {
	return g.limit
}

func (g *Gate) Unlocked(userID uuid.UUID) bool {
	unlocked, err := g.store.IsUnlocked(userID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read unlock flag")
		return false
	}
	return unlocked
}

// AllowSingle gates one manual product creation: blocked once the current
// total has reached the limit.
func (g *Gate) AllowSingle(userID uuid.UUID, currentTotal int64) error {
	if g.Unlocked(userID) {
		return nil
	}
	if currentTotal >= int64(g.limit) {
		return ErrQuotaExceeded
	}
	return nil
}

// AllowBulk gates a batch insert: blocked when the batch would push the
// total past the limit. The boundary is strict, unlike AllowSingle,
// because the bulk path pre-checks before inserting.
func (g *Gate) AllowBulk(userID uuid.UUID, currentTotal int64, incoming int) error {
	if g.Unlocked(userID) {
		return nil
	}
	if currentTotal+int64(incoming) > int64(g.limit) {
		return ErrQuotaExceeded
	}
	return nil
}

// SubmitPassphrase verifies an access code. On match the unlocked flag is
// persisted and the blocked operation is retried via the supplied
// continuation; on mismatch the flag is untouched and
// ErrInvalidPassphrase is returned so the prompt stays open.
func (g *Gate) SubmitPassphrase(ctx context.Context, userID uuid.UUID, code string, retry func(context.Context) error) error {
	if !g.matches(code) {
		return ErrInvalidPassphrase
	}

	if err := g.store.SetUnlocked(userID); err != nil {
		return err
	}
	logrus.WithField("user_id", userID).Info("Product limit unlocked")

	if retry != nil {
		return retry(ctx)
	}
	return nil
}

func (g *Gate) matches(code string) bool {
	code = normalize(code)
	for _, p := range g.passphrases {
		if code == p {
			return true
		}
	}
	return false
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
