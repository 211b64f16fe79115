package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/qsecurex/portal/internal/domain/setting"
	"github.com/qsecurex/portal/internal/pkg/errors"
)

// SettingRepository implements setting.Repository
type SettingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new admin settings repository
func NewSettingRepository(db *sql.DB) setting.Repository {
	return &SettingRepository{db: db}
}

// Get returns the stored value and whether the key exists
func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM admin_settings WHERE name = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.DatabaseError("Failed to read setting", err)
	}
	return value, true, nil
}

// Set upserts the value for key
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_settings (name, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return errors.DatabaseError("Failed to save setting", err)
	}
	return nil
}
