package quotecart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var sessionFileRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileAdapter persists cart snapshots as one JSON file per session. Used for
// single-node dev setups where redis is not running.
type FileAdapter struct {
	path string
}

func NewFileAdapter(dir, sessionID string) (*FileAdapter, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if !sessionFileRe.MatchString(sessionID) {
		return nil, fmt.Errorf("invalid session id %q", sessionID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return &FileAdapter{path: filepath.Join(dir, sessionID+".json")}, nil
}

func (a *FileAdapter) Load(_ context.Context) ([]QuoteItem, error) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read cart snapshot: %w", err)
	}
	return decodeSnapshot(raw)
}

func (a *FileAdapter) Save(_ context.Context, items []QuoteItem) error {
	payload, err := encodeSnapshot(items)
	if err != nil {
		return err
	}

	// write-then-rename keeps a crash from leaving a torn snapshot
	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("replace cart snapshot: %w", err)
	}
	return nil
}
