package sessions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatchAllSucceed(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	results := RunBatch(context.Background(), ids, func(_ context.Context, _ uuid.UUID) error {
		return nil
	})
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, ids[i], res.SessionID)
		assert.True(t, res.OK)
		assert.Empty(t, res.Error)
	}
}

func TestRunBatchFailureIsIsolated(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	bad := ids[1]
	results := RunBatch(context.Background(), ids, func(_ context.Context, id uuid.UUID) error {
		if id == bad {
			return errors.New("not in organization")
		}
		return nil
	})
	require.Len(t, results, 3)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.Equal(t, "not in organization", results[1].Error)
	assert.True(t, results[2].OK, "item after the failure still runs")
}

func TestRunBatchPreservesOrderAndDuplicates(t *testing.T) {
	id := uuid.New()
	ids := []uuid.UUID{id, id}
	calls := 0
	results := RunBatch(context.Background(), ids, func(_ context.Context, _ uuid.UUID) error {
		calls++
		return nil
	})
	assert.Equal(t, 2, calls)
	require.Len(t, results, 2)
	assert.Equal(t, id, results[0].SessionID)
	assert.Equal(t, id, results[1].SessionID)
}

func TestRunBatchEmpty(t *testing.T) {
	results := RunBatch(context.Background(), nil, func(_ context.Context, _ uuid.UUID) error {
		t.Fatal("fn must not be called")
		return nil
	})
	assert.Empty(t, results)
}
