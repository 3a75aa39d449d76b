package usage

import (
	"context"
	"errors"
	"testing"

	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	err error
}

func (f *failingStore) Insert(context.Context, *Entry) error { return f.err }

func (f *failingStore) Count(context.Context, string, limits.FeatureKey) (int, error) {
	return 0, f.err
}

func TestLedger_LogAndCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ledger := NewLedger(store)

	count, err := ledger.Count(ctx, "user-1", limits.FeatureAudioConvert)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	entry, err := ledger.Log(ctx, "user-1", limits.FeatureAudioConvert, "audio conversion")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.UsedAt.IsZero())
	assert.Equal(t, "audio conversion", entry.FeatureName)

	count, err = ledger.Count(ctx, "user-1", limits.FeatureAudioConvert)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// other users and features are counted separately
	count, err = ledger.Count(ctx, "user-2", limits.FeatureAudioConvert)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = ledger.Count(ctx, "user-1", limits.FeatureVideoConvert)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLedger_LogRequiresUser(t *testing.T) {
	ledger := NewLedger(NewMemoryStore())

	_, err := ledger.Log(context.Background(), "", limits.FeatureAudioConvert, "audio conversion")
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestLedger_CountWithoutUserIsZero(t *testing.T) {
	ledger := NewLedger(&failingStore{err: errors.New("should not be called")})

	count, err := ledger.Count(context.Background(), "", limits.FeatureAudioConvert)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLedger_LogPropagatesStoreFailure(t *testing.T) {
	cause := errors.New("connection refused")
	ledger := NewLedger(&failingStore{err: cause})

	_, err := ledger.Log(context.Background(), "user-1", limits.FeatureAudioConvert, "audio conversion")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLedgerWrite)
	assert.ErrorIs(t, err, cause)
}

func TestLedger_CountPropagatesStoreFailure(t *testing.T) {
	cause := errors.New("connection refused")
	ledger := NewLedger(&failingStore{err: cause})

	_, err := ledger.Count(context.Background(), "user-1", limits.FeatureAudioConvert)
	assert.ErrorIs(t, err, cause)
}

func TestLedger_CountIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore())

	for i := 0; i < 3; i++ {
		_, err := ledger.Log(ctx, "user-1", limits.FeatureImageStamp, "stamp")
		require.NoError(t, err)
	}

	first, err := ledger.Count(ctx, "user-1", limits.FeatureImageStamp)
	require.NoError(t, err)
	second, err := ledger.Count(ctx, "user-1", limits.FeatureImageStamp)
	require.NoError(t, err)

	assert.Equal(t, 3, first)
	assert.Equal(t, first, second)
}

func TestLedger_Reports(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore())

	_, err := ledger.Log(ctx, "user-1", limits.FeatureImageStamp, "stamp")
	require.NoError(t, err)
	_, err = ledger.Log(ctx, "user-1", limits.FeatureImageStamp, "stamp")
	require.NoError(t, err)
	_, err = ledger.Log(ctx, "user-1", limits.FeatureAudioConvert, "audio")
	require.NoError(t, err)

	counts, err := ledger.CountsByFeature(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[limits.FeatureKey]int{
		limits.FeatureImageStamp:   2,
		limits.FeatureAudioConvert: 1,
	}, counts)

	history, err := ledger.History(ctx, "user-1", 30)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 3, history[0].Count)

	// stores without reporting support return nothing
	plain := NewLedger(&failingStore{})
	counts, err = plain.CountsByFeature(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, counts)
}

func TestLedger_EntriesPaginates(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore())

	for _, f := range []limits.FeatureKey{limits.FeatureAudioConvert, limits.FeatureImageStamp, limits.FeatureVideoConvert} {
		_, err := ledger.Log(ctx, "user-1", f, string(f))
		require.NoError(t, err)
	}

	_, err := ledger.Log(ctx, "user-2", limits.FeatureAudioConvert, "other")
	require.NoError(t, err)

	page, total, err := ledger.Entries(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, limits.FeatureVideoConvert, page[0].FeatureType)

	page, _, err = ledger.Entries(ctx, "user-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, limits.FeatureAudioConvert, page[0].FeatureType)

	page, _, err = ledger.Entries(ctx, "user-1", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestLedger_EntriesWithoutReporter(t *testing.T) {
	page, total, err := NewLedger(&failingStore{}).Entries(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Zero(t, total)
}
