package sessions

import (
	"context"

	"github.com/google/uuid"
)

// ItemResult is the outcome of one item in a batch mutation.
type ItemResult struct {
	SessionID uuid.UUID `json:"session_id"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
}

// RunBatch applies fn to each ID independently: one item's failure is
// recorded and must not affect any other item in the batch.
func RunBatch(ctx context.Context, ids []uuid.UUID, fn func(ctx context.Context, id uuid.UUID) error) []ItemResult {
	results := make([]ItemResult, 0, len(ids))
	for _, id := range ids {
		res := ItemResult{SessionID: id, OK: true}
		if err := fn(ctx, id); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}
