package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/qsecurex/portal/internal/domain/license"
	"github.com/qsecurex/portal/internal/domain/user"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/migrations"
)

// NewTestDB creates a migrated SQLite database in a temp dir. It is closed
// when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Mirrors production SQLite settings: one connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := postgres.RunMigrations(context.Background(), db, migrations.GetFS()); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { CleanupDB(db) })
	return db
}

// CleanupDB closes the test database
func CleanupDB(db *sql.DB) {
	if db != nil {
		db.Close()
	}
}

// CreateUser inserts a user with a throwaway password hash
func CreateUser(t *testing.T, db *sql.DB, email string) *user.User {
	t.Helper()

	u := &user.User{Email: email, PasswordHash: "x", Name: email, Role: user.RoleUser}
	if err := postgres.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return u
}

// CreateAdmin inserts a user holding the admin role
func CreateAdmin(t *testing.T, db *sql.DB, email string) *user.User {
	t.Helper()

	u := &user.User{Email: email, PasswordHash: "x", Name: email, Role: user.RoleAdmin}
	if err := postgres.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create admin %s: %v", email, err)
	}
	return u
}

// CreateLicense inserts an active license with a generated key
func CreateLicense(t *testing.T, db *sql.DB, userID string, plan license.Plan) *license.License {
	t.Helper()

	key, err := license.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	l := license.New(userID, plan, key, time.Now())
	if err := postgres.NewLicenseRepository(db).Create(context.Background(), l); err != nil {
		t.Fatalf("Failed to create license: %v", err)
	}
	return l
}
