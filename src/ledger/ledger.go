package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"assetledger/src/apperrors"
	"assetledger/src/database"
	"assetledger/src/model"
	"assetledger/src/repository"
)

// Ledger owns the per-(user, asset) position aggregates. Every write to an
// aggregate goes through here: the apply of a new transaction, and the full
// replay after an amendment or deletion.
//
// Serialization is layered: an in-process mutex per (user, asset) key keeps
// one apply in flight at a time, and the database transaction locks the
// position row so multiple instances cannot interleave either. Contention is
// retried a bounded number of times before surfacing a conflict.
type Ledger struct {
	db           *gorm.DB
	keys         *keyedMutex
	transactions *repository.TransactionRepository
	positions    *repository.PositionRepository
	cfg          Config
}

var (
	defaultLedger *Ledger
	defaultOnce   sync.Once
)

// Default returns the process-wide ledger on the main database. All handlers
// must share it: the per-key mutex only serializes applies that go through
// the same instance.
func Default() *Ledger {
	defaultOnce.Do(func() {
		defaultLedger = NewWithDB(database.MainDB, GetConfig())
	})
	return defaultLedger
}

// NewWithDB creates a ledger bound to a specific database connection.
// Useful for tests.
func NewWithDB(db *gorm.DB, cfg Config) *Ledger {
	return &Ledger{
		db:           db,
		keys:         newKeyedMutex(),
		transactions: repository.NewTransactionRepository().WithDB(db),
		positions:    repository.NewPositionRepository().WithDB(db),
		cfg:          cfg,
	}
}

// Apply admits a validated transaction: it loads the current aggregate (or the
// zero baseline), folds the transaction in, and persists both the aggregate
// and the log entry in one database transaction. The whole load-compute-store
// sequence runs inside the per-key critical section.
func (l *Ledger) Apply(ctx context.Context, tx *model.Transaction) (*model.Position, error) {
	unlock, err := l.lockKey(ctx, tx.UserID, tx.AssetID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *model.Position
	err = l.withRetry(ctx, "Apply", func() error {
		return l.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
			positions := l.positions.WithDB(dbtx)

			current, err := positions.FindForUpdate(ctx, tx.UserID, tx.AssetID)
			if err != nil {
				return err
			}
			if current == nil {
				baseline := NewBaseline(tx.UserID, tx.AssetID)
				current = &baseline
			}

			next, err := Step(*current, tx, l.cfg.AllowShortPositions)
			if err != nil {
				return err
			}
			next.ID = current.ID

			if err := l.transactions.WithDB(dbtx).Create(ctx, tx); err != nil {
				return err
			}
			if err := l.savePosition(ctx, positions, &next); err != nil {
				return err
			}
			result = &next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component": "Ledger",
		"op":        "Apply",
		"user":      tx.UserID,
		"asset":     tx.AssetID,
		"type":      tx.TransactionTypeKey,
	}).Info("Transaction applied")

	return result, nil
}

// Amend rewrites an existing transaction and replays the affected position
// from its full history. The amended transaction must already be validated;
// its ID selects the log entry to replace.
func (l *Ledger) Amend(ctx context.Context, amended *model.Transaction) (*model.Position, error) {
	existing, err := l.ownedTransaction(ctx, amended.ID, amended.UserID)
	if err != nil {
		return nil, err
	}

	// An amendment may not move a transaction to another user's asset; the
	// validator already checked ownership of the target asset.
	unlock, err := l.lockKey(ctx, existing.UserID, existing.AssetID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if amended.AssetID != existing.AssetID {
		// Moving between assets touches two aggregates; lock the second.
		unlockNew, err := l.lockKey(ctx, amended.UserID, amended.AssetID)
		if err != nil {
			return nil, err
		}
		defer unlockNew()
	}

	var result *model.Position
	err = l.withRetry(ctx, "Amend", func() error {
		return l.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
			amended.CreatedAt = existing.CreatedAt
			if err := l.transactions.WithDB(dbtx).Update(ctx, amended); err != nil {
				return err
			}

			if amended.AssetID != existing.AssetID {
				if _, err := l.replayLocked(ctx, dbtx, existing.UserID, existing.AssetID); err != nil {
					return err
				}
			}
			replayed, err := l.replayLocked(ctx, dbtx, amended.UserID, amended.AssetID)
			if err != nil {
				return err
			}
			result = replayed
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":   "Ledger",
		"op":          "Amend",
		"transaction": amended.ID,
		"asset":       amended.AssetID,
	}).Info("Transaction amended, position replayed")

	return result, nil
}

// Remove deletes a transaction from the log and replays the affected position.
func (l *Ledger) Remove(ctx context.Context, userID uint, transactionID string) (*model.Position, error) {
	existing, err := l.ownedTransaction(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}

	unlock, err := l.lockKey(ctx, existing.UserID, existing.AssetID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *model.Position
	err = l.withRetry(ctx, "Remove", func() error {
		return l.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
			if err := l.transactions.WithDB(dbtx).Delete(ctx, transactionID); err != nil {
				return err
			}
			replayed, err := l.replayLocked(ctx, dbtx, existing.UserID, existing.AssetID)
			if err != nil {
				return err
			}
			result = replayed
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":   "Ledger",
		"op":          "Remove",
		"transaction": transactionID,
		"asset":       existing.AssetID,
	}).Info("Transaction removed, position replayed")

	return result, nil
}

// replayLocked rebuilds one aggregate from its full transaction history.
// Callers must hold the key lock and run inside a database transaction.
func (l *Ledger) replayLocked(ctx context.Context, dbtx *gorm.DB, userID uint, assetID string) (*model.Position, error) {
	positions := l.positions.WithDB(dbtx)

	current, err := positions.FindForUpdate(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}

	history, err := l.transactions.WithDB(dbtx).FindByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	replayed, err := Replay(userID, assetID, history, l.cfg.AllowShortPositions)
	if err != nil {
		return nil, err
	}
	if current != nil {
		replayed.ID = current.ID
	}

	if err := l.savePosition(ctx, positions, &replayed); err != nil {
		return nil, err
	}
	return &replayed, nil
}

func newPositionID() string {
	return uuid.NewString()
}

func (l *Ledger) savePosition(ctx context.Context, positions *repository.PositionRepository, position *model.Position) error {
	if position.ID == "" {
		position.ID = newPositionID()
	}
	position.UpdatedAt = time.Now().UTC()
	return positions.Save(ctx, position)
}

func (l *Ledger) ownedTransaction(ctx context.Context, transactionID string, userID uint) (*model.Transaction, error) {
	existing, err := l.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, &apperrors.StorageError{Message: "transaction lookup failed", Err: err}
	}
	if existing == nil {
		return nil, &apperrors.NotFoundError{
			Message: "Transaction Not Found",
			Action:  "Please check the transaction id",
		}
	}
	if existing.UserID != userID {
		return nil, &apperrors.UnauthorizedError{
			Message: "Transaction and user are not related",
			Action:  "Please check the transaction id",
		}
	}
	return existing, nil
}

func (l *Ledger) lockKey(ctx context.Context, userID uint, assetID string) (func(), error) {
	key := fmt.Sprintf("%d/%s", userID, assetID)
	lockCtx, cancel := context.WithTimeout(ctx, l.cfg.LockTimeout)
	defer cancel()

	if err := l.keys.Lock(lockCtx, key); err != nil {
		return nil, &apperrors.ConflictError{
			Message: "position is busy, please retry",
		}
	}
	return func() { l.keys.Unlock(key) }, nil
}

// withRetry re-runs fn on storage-level contention (deadlocks, serialization
// failures, sqlite write locks). Validation and not-found failures pass
// through untouched; other storage errors are wrapped and surfaced once.
func (l *Ledger) withRetry(ctx context.Context, op string, fn func() error) error {
	attempts := l.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isContention(err) {
			break
		}

		logger.WithFields(map[string]interface{}{
			"component": "Ledger",
			"op":        op,
			"attempt":   attempt,
		}).WithError(err).Warn("Contention on position key, retrying")

		select {
		case <-time.After(l.cfg.RetryBackoff):
		case <-ctx.Done():
			return &apperrors.ConflictError{Message: "apply cancelled while retrying"}
		}
	}

	if isContention(err) {
		return &apperrors.ConflictError{Message: "storage contention on position key"}
	}
	if apperrors.IsValidation(err) || apperrors.IsNotFound(err) || apperrors.IsUnauthorized(err) {
		return err
	}
	return &apperrors.StorageError{Message: "ledger apply failed", Err: err}
}

func isContention(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
