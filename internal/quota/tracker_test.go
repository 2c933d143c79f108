package quota

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-content-replacer-pro/backend/internal/datastore"
)

type fakeStore struct {
	increments []int
	resets     int
	failNext   error
}

func (f *fakeStore) IncrementUsage(userID int, providerID string, amount int) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.increments = append(f.increments, amount)
	return nil
}

func (f *fakeStore) ResetDailyUsage() error {
	f.resets++
	return nil
}

func TestIsUnderLimit(t *testing.T) {
	tracker := NewTrackerWithStore(&fakeStore{})

	assert.True(t, tracker.IsUnderLimit(&datastore.ProviderConfig{UsedToday: 0, DailyLimit: 1000}))
	assert.True(t, tracker.IsUnderLimit(&datastore.ProviderConfig{UsedToday: 999, DailyLimit: 1000}))
	assert.False(t, tracker.IsUnderLimit(&datastore.ProviderConfig{UsedToday: 1000, DailyLimit: 1000}))
	assert.False(t, tracker.IsUnderLimit(&datastore.ProviderConfig{UsedToday: 1400, DailyLimit: 1000}))
}

func TestRecordUsagePersistsAndMirrors(t *testing.T) {
	store := &fakeStore{}
	tracker := NewTrackerWithStore(store)

	cfg := &datastore.ProviderConfig{UserID: 1, ProviderID: "openai", UsedToday: 10, DailyLimit: 1000}
	require.NoError(t, tracker.RecordUsage(cfg, 250))

	assert.Equal(t, []int{250}, store.increments)
	assert.Equal(t, 260, cfg.UsedToday)
}

func TestRecordUsagePersistenceFailureIsSurfacedNotSwallowed(t *testing.T) {
	store := &fakeStore{failNext: errors.New("connection reset")}
	tracker := NewTrackerWithStore(store)

	cfg := &datastore.ProviderConfig{UserID: 1, ProviderID: "groq", UsedToday: 10}
	err := tracker.RecordUsage(cfg, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq")

	// Not persisted means not mirrored: under-recording beats premature cutoff.
	assert.Equal(t, 10, cfg.UsedToday)
}

func TestRecordUsageRejectsNegativeAmount(t *testing.T) {
	store := &fakeStore{}
	tracker := NewTrackerWithStore(store)

	err := tracker.RecordUsage(&datastore.ProviderConfig{}, -5)
	require.Error(t, err)
	assert.Empty(t, store.increments)
}

func TestResetAllIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	tracker := NewTrackerWithStore(store)

	require.NoError(t, tracker.ResetAll())
	require.NoError(t, tracker.ResetAll())
	assert.Equal(t, 2, store.resets)
}
