package quotecart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSnapshotNotFound signals an empty durable slot. Malformed snapshots are
// reported distinctly so the store can surface a hydration failure before
// falling back to an empty cart.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// Adapter reads and writes the serialized cart snapshot. Implementations own
// their durability and timeout story; the store treats every call as fallible
// and non-fatal.
type Adapter interface {
	Load(ctx context.Context) ([]QuoteItem, error)
	Save(ctx context.Context, items []QuoteItem) error
}

const snapshotVersion = 1

type snapshotEnvelope struct {
	Version int         `json:"version"`
	Items   []QuoteItem `json:"items"`
}

func encodeSnapshot(items []QuoteItem) ([]byte, error) {
	payload, err := json.Marshal(snapshotEnvelope{Version: snapshotVersion, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return payload, nil
}

func decodeSnapshot(raw []byte) ([]QuoteItem, error) {
	var envelope snapshotEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if envelope.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported cart snapshot version %d", envelope.Version)
	}
	return envelope.Items, nil
}
