package visit

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

const lockShards = 64

// lockTable serializes evaluations per inmate. Each shard is a buffered
// channel used as a slot, so waiting for a busy shard honors context
// cancellation, which a sync.Mutex cannot. Two inmates hashing to the same
// shard serialize needlessly; that costs parallelism, never correctness.
type lockTable struct {
	shards [lockShards]chan struct{}
}

func newLockTable() *lockTable {
	table := &lockTable{}
	for i := range table.shards {
		table.shards[i] = make(chan struct{}, 1)
	}
	return table
}

// Acquire takes the shard lock for the inmate. The returned release
// function must be called exactly once. An expired context fails with
// CodeTimeout before anything is written, even when the shard is free.
func (t *lockTable) Acquire(ctx context.Context, inmateID id.InmateID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "context expired before the inmate lock was acquired")
	}

	shard := t.shards[shardIndex(inmateID)]
	select {
	case shard <- struct{}{}:
		return func() { <-shard }, nil
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for the inmate lock")
	}
}

func shardIndex(inmateID id.InmateID) int {
	raw := uuid.UUID(inmateID)
	h := fnv.New32a()
	h.Write(raw[:])
	return int(h.Sum32() % lockShards)
}
