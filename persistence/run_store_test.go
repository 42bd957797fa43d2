package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/pagemend/framework"
)

func sampleRecord(id string) *RunRecord {
	state := framework.NewState(map[string]any{"css": ".x { width: 300px; }"})
	state.FinalOutput = map[string]any{"status": "pending", "message": "Changes require user approval"}
	return &RunRecord{ID: id, State: state, Status: RunStatusPending}
}

func TestFileRunStoreSaveLoad(t *testing.T) {
	store, err := NewFileRunStore(t.TempDir())
	assert.NoError(t, err)

	record := sampleRecord("run-1")
	assert.NoError(t, store.Save(context.Background(), record))
	assert.False(t, record.UpdatedAt.IsZero())

	loaded, ok, err := store.Load(context.Background(), "run-1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, RunStatusPending, loaded.Status)
	assert.Equal(t, "pending", loaded.State.FinalOutput["status"])

	_, ok, err = store.Load(context.Background(), "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFileRunStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileRunStore(dir)
	assert.NoError(t, err)
	assert.NoError(t, store.Save(context.Background(), sampleRecord("run-a")))

	record := sampleRecord("run-b")
	record.Status = RunStatusApproved
	assert.NoError(t, store.Save(context.Background(), record))

	reopened, err := NewFileRunStore(dir)
	assert.NoError(t, err)
	records, err := reopened.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "run-a", records[0].ID)
	assert.Equal(t, "run-b", records[1].ID)
	assert.Equal(t, RunStatusApproved, records[1].Status)
}

func TestFileRunStoreDelete(t *testing.T) {
	store, err := NewFileRunStore(t.TempDir())
	assert.NoError(t, err)
	assert.NoError(t, store.Save(context.Background(), sampleRecord("run-x")))
	assert.NoError(t, store.Delete(context.Background(), "run-x"))

	_, ok, err := store.Load(context.Background(), "run-x")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFileRunStoreCancelledContext(t *testing.T) {
	store, err := NewFileRunStore(t.TempDir())
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Save(ctx, sampleRecord("run-y")), context.Canceled)
	_, _, loadErr := store.Load(ctx, "run-y")
	assert.ErrorIs(t, loadErr, context.Canceled)
}

func TestFileRunStoreRequiresRoot(t *testing.T) {
	_, err := NewFileRunStore("")
	assert.Error(t, err)
}
