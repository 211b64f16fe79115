package postgres_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/repository/postgres"
	"github.com/qsecurex/portal/internal/testutil"
)

func TestDownloadRepository_QuotaBoundUnderConcurrency(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewDownloadRepository(db)
	ctx := context.Background()

	const users = 40
	ids := make([]string, users)
	for i := range ids {
		ids[i] = testutil.CreateUser(t, db, fmt.Sprintf("user%02d@example.com", i)).ID
	}

	var granted, exhausted atomic.Int32
	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := repo.Record(ctx, &download.FreeDownload{UserID: id, Platform: "macos"}, download.GlobalFreeLimit)
			switch {
			case err == nil:
				granted.Add(1)
			case assert.ErrorIs(t, err, download.ErrQuotaExhausted):
				exhausted.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, download.GlobalFreeLimit, granted.Load())
	assert.EqualValues(t, users-download.GlobalFreeLimit, exhausted.Load())

	used, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, download.GlobalFreeLimit, used)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM free_downloads`).Scan(&rows))
	assert.Equal(t, download.GlobalFreeLimit, rows)
}

func TestDownloadRepository_OnePerUserUnderConcurrency(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewDownloadRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "eager@example.com")

	var granted atomic.Int32
	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			err := repo.Record(ctx, &download.FreeDownload{UserID: u.ID, Platform: "macos"}, download.GlobalFreeLimit)
			if err == nil {
				granted.Add(1)
				return nil
			}
			assert.ErrorIs(t, err, download.ErrAlreadyDownloaded)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, granted.Load())

	used, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, used, "losing attempts must not consume slots")
}

func TestDownloadRepository_Reset(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewDownloadRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u := testutil.CreateUser(t, db, fmt.Sprintf("r%d@example.com", i))
		require.NoError(t, repo.Record(ctx, &download.FreeDownload{UserID: u.ID, Platform: "macos"}, download.GlobalFreeLimit))
	}

	deleted, err := repo.Reset(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	used, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, used)
}
