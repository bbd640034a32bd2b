package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/testutil"
)

func TestPendingBookingRepository_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	r := repository.NewPendingBookingRepository(db)

	created, err := r.Create(ctx, "t1", "Jazz Night", 2, "book 2 tickets for jazz night")
	require.NoError(t, err)

	got, err := r.GetByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	require.NoError(t, r.Delete(ctx, "t1"))
	_, err = r.GetByToken(ctx, "t1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPendingBookingRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := repository.NewPendingBookingRepository(testutil.NewDB(t))

	require.NoError(t, r.Delete(ctx, "never-created"))
	require.NoError(t, r.Delete(ctx, "never-created"))
}

func TestPendingBookingRepository_DistinctTokensAreIndependent(t *testing.T) {
	ctx := context.Background()
	r := repository.NewPendingBookingRepository(testutil.NewDB(t))

	_, err := r.Create(ctx, "a", "Jazz Night", 1, "")
	require.NoError(t, err)
	_, err = r.Create(ctx, "b", "Rock Fest", 3, "")
	require.NoError(t, err)

	a, err := r.GetByToken(ctx, "a")
	require.NoError(t, err)
	b, err := r.GetByToken(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, "Jazz Night", a.EventName)
	assert.Equal(t, 1, a.Tickets)
	assert.Equal(t, "Rock Fest", b.EventName)
	assert.Equal(t, 3, b.Tickets)
}

func TestPendingBookingRepository_DuplicateTokenIsStorageError(t *testing.T) {
	ctx := context.Background()
	r := repository.NewPendingBookingRepository(testutil.NewDB(t))

	_, err := r.Create(ctx, "dup", "Jazz Night", 1, "")
	require.NoError(t, err)
	_, err = r.Create(ctx, "dup", "Rock Fest", 1, "")
	require.ErrorIs(t, err, repository.ErrStorage)
}

func TestPendingBookingRepository_GetMostRecent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	r := repository.NewPendingBookingRepository(db)

	_, err := r.GetMostRecent(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	testutil.InsertEvent(t, db, "Jazz Night", 10, 10)
	testutil.InsertEvent(t, db, "Rock Fest", 10, 10)

	_, err = r.Create(ctx, "older", "Jazz Night", 1, "")
	require.NoError(t, err)
	_, err = r.Create(ctx, "newer", "ROCK FEST", 2, "")
	require.NoError(t, err)
	// Newest of all, but names no existing event.
	_, err = r.Create(ctx, "orphan", "Polka Party", 4, "")
	require.NoError(t, err)

	latest, err := r.GetMostRecent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", latest.Token)

	require.NoError(t, r.Delete(ctx, "newer"))
	latest, err = r.GetMostRecent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "older", latest.Token)

	require.NoError(t, r.Delete(ctx, "older"))
	_, err = r.GetMostRecent(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPendingBookingRepository_DeleteCreatedBefore(t *testing.T) {
	ctx := context.Background()
	r := repository.NewPendingBookingRepository(testutil.NewDB(t))

	_, err := r.Create(ctx, "a", "Jazz Night", 1, "")
	require.NoError(t, err)
	_, err = r.Create(ctx, "b", "Jazz Night", 1, "")
	require.NoError(t, err)

	n, err := r.DeleteCreatedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.DeleteCreatedBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = r.GetByToken(ctx, "a")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
