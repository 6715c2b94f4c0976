// Package pinstore persists pins per model, as YAML files or in SQLite.
package pinstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/panoview/internal/overlay"
)

// ErrModelNotFound is returned for a model with no stored pins.
var ErrModelNotFound = errors.New("pinstore: model not found")

// Store kinds accepted by Open.
const (
	KindYAML   = "yaml"
	KindSQLite = "sqlite"
)

// Store reads and writes the pin list of each model.
type Store interface {
	overlay.PinStore

	// Save replaces the pins of modelID, keeping their order.
	Save(ctx context.Context, modelID string, pins []overlay.Pin) error
	// Models lists the stored model ids, sorted.
	Models(ctx context.Context) ([]string, error)
	Close() error
}

// Open opens a store of the given kind. For KindYAML path is a directory,
// for KindSQLite a database file.
func Open(kind, path string) (Store, error) {
	switch kind {
	case KindYAML, "":
		return NewFileStore(path)
	case KindSQLite:
		return NewSQLStore(path)
	}
	return nil, fmt.Errorf("pinstore: unknown store kind %q", kind)
}
