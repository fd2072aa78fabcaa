package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDeadlock is returned when a transaction still deadlocks after all retries
var ErrDeadlock = errors.New("deadlock detected")

// IsolationLevel represents the transaction isolation level
type IsolationLevel int

const (
	// ReadCommitted prevents dirty reads (PostgreSQL default)
	ReadCommitted IsolationLevel = iota
	// RepeatableRead prevents non-repeatable reads
	RepeatableRead
	// Serializable provides full isolation
	Serializable
)

// String returns the string representation of the isolation level
func (l IsolationLevel) String() string {
	switch l {
	case RepeatableRead:
		return "REPEATABLE READ"
	case Serializable:
		return "SERIALIZABLE"
	default:
		return "READ COMMITTED"
	}
}

// txOptions converts the level to sql.TxOptions. SQLite only supports the
// default level, so ReadCommitted leaves the choice to the driver.
func (l IsolationLevel) txOptions() *sql.TxOptions {
	switch l {
	case RepeatableRead:
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	case Serializable:
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	default:
		return nil
	}
}

// RetryConfig configures retry behavior for deadlocked transactions
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseBackoff: 100 * time.Millisecond}
}

// TxManager runs functions in database transactions
type TxManager struct {
	db    *sql.DB
	level IsolationLevel
	retry RetryConfig
}

// NewTxManager creates a transaction manager for db
func NewTxManager(db *sql.DB, level IsolationLevel, retry RetryConfig) *TxManager {
	if retry.MaxRetries < 1 {
		retry.MaxRetries = 1
	}
	return &TxManager{db: db, level: level, retry: retry}
}

// WithTransaction executes fn within a transaction. It commits on success
// and rolls back on error or panic.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, m.level.txOptions())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithRetry executes fn in a transaction, retrying with exponential backoff
// while the database reports a deadlock or serialization failure. fn must
// not change state outside the transaction.
func (m *TxManager) WithRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var lastErr error

	for attempt := 0; attempt < m.retry.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("transaction cancelled before retry %d: %w", attempt, ctx.Err())
		}

		err := m.WithTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return err
		}
		lastErr = err

		backoff := m.retry.BaseBackoff * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%w: transaction failed after %d attempts: %v", ErrDeadlock, m.retry.MaxRetries, lastErr)
}

// IsRetryableError checks if an error is a deadlock or serialization failure
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	// PostgreSQL deadlock_detected and serialization_failure
	if strings.Contains(msg, "40P01") || strings.Contains(msg, "40001") {
		return true
	}

	msg = strings.ToLower(msg)
	for _, s := range []string{
		"deadlock detected",
		"deadlock found",
		"could not serialize access",
		"database is locked",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ParseIsolationLevel parses "read committed", "repeatable read" or
// "serializable", ignoring case. Words may be separated by a space, "_" or "-".
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case "", "read committed":
		return ReadCommitted, nil
	case "repeatable read":
		return RepeatableRead, nil
	case "serializable":
		return Serializable, nil
	default:
		return ReadCommitted, fmt.Errorf("unknown isolation level: %s", s)
	}
}
