package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/pkg/errors"
)

// DownloadRepository implements download.Repository
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new free download repository
func NewDownloadRepository(db *sql.DB) download.Repository {
	return &DownloadRepository{db: db}
}

// Record inserts the free download, then claims a counter slot. The unique
// user_id constraint rejects a second row for the same user and the guarded
// increment rejects a claim once the counter reaches limit.
func (r *DownloadRepository) Record(ctx context.Context, d *download.FreeDownload, limit int) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now()
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO free_downloads (id, user_id, platform, downloaded_at)
			VALUES ($1, $2, $3, $4)
		`, d.ID, d.UserID, d.Platform, d.DownloadedAt.Unix())
		if err != nil {
			if _, ok := uniqueViolation(err); ok {
				return download.ErrAlreadyDownloaded
			}
			return errors.DatabaseError("Failed to record free download", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE download_counters SET used = used + 1
			WHERE name = $1 AND used < $2
		`, download.CounterFreeTrial, limit)
		if err != nil {
			return errors.DatabaseError("Failed to claim free download slot", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return download.ErrQuotaExhausted
		}
		return nil
	})
}

// CountAll returns the number of consumed free slots
func (r *DownloadRepository) CountAll(ctx context.Context) (int, error) {
	var used int
	err := r.db.QueryRowContext(ctx,
		`SELECT used FROM download_counters WHERE name = $1`, download.CounterFreeTrial,
	).Scan(&used)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.DatabaseError("Failed to read free download counter", err)
	}
	return used, nil
}

// HasUserDownloaded reports whether the user consumed a free slot
func (r *DownloadRepository) HasUserDownloaded(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM free_downloads WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return false, errors.DatabaseError("Failed to check free download", err)
	}
	return n > 0, nil
}

// Reset deletes all free downloads and zeroes the counter
func (r *DownloadRepository) Reset(ctx context.Context) (int64, error) {
	var deleted int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM free_downloads`)
		if err != nil {
			return errors.DatabaseError("Failed to delete free downloads", err)
		}
		if deleted, err = rowsAffected(res); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO download_counters (name, used) VALUES ($1, 0)
			ON CONFLICT (name) DO UPDATE SET used = 0
		`, download.CounterFreeTrial)
		if err != nil {
			return errors.DatabaseError("Failed to reset free download counter", err)
		}
		return nil
	})
	return deleted, err
}
