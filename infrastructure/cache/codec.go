package cache

import (
	"netgraph-backend/domain/core/aggregates"
	pkgerrors "netgraph-backend/pkg/errors"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotCodec serializes graph snapshots for the cache. Msgpack keeps
// float64 fields bit-exact across a round trip, which JSON does not
// guarantee for all encoders.
type SnapshotCodec struct{}

// Encode marshals a snapshot to its cache representation.
func (SnapshotCodec) Encode(s *aggregates.GraphSnapshot) ([]byte, error) {
	if s == nil {
		return nil, pkgerrors.NewValidationError("snapshot cannot be nil")
	}
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode graph snapshot").WithCause(err)
	}
	return data, nil
}

// Decode unmarshals a cache payload. A corrupt payload is reported as a
// data-integrity failure so callers fall back to the durable store.
func (SnapshotCodec) Decode(data []byte) (*aggregates.GraphSnapshot, error) {
	var s aggregates.GraphSnapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("failed to decode graph snapshot").WithCause(err)
	}
	return &s, nil
}
