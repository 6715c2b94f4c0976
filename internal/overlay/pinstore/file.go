package pinstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/panoview/internal/overlay"
)

// FileDocument is the YAML layout of one model file.
type FileDocument struct {
	Model string        `yaml:"model"`
	Pins  []overlay.Pin `yaml:"pins"`
}

// FileStore keeps one <model>.yaml file per model in a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating pin directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(modelID string) (string, error) {
	if modelID == "" || strings.ContainsAny(modelID, `/\`) || modelID == "." || modelID == ".." {
		return "", fmt.Errorf("pinstore: invalid model id %q", modelID)
	}
	return filepath.Join(s.dir, modelID+".yaml"), nil
}

// Pins reads the pins of modelID.
func (s *FileStore) Pins(ctx context.Context, modelID string) ([]overlay.Pin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(modelID)
	if err != nil {
		return nil, err
	}

	doc, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, modelID)
	}
	if err != nil {
		return nil, err
	}
	return doc.Pins, nil
}

// Save writes the pins of modelID.
func (s *FileStore) Save(ctx context.Context, modelID string, pins []overlay.Pin) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(modelID)
	if err != nil {
		return err
	}
	return WriteFile(path, FileDocument{Model: modelID, Pins: pins})
}

// Models lists the model files in the directory.
func (s *FileStore) Models(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing pin directory: %w", err)
	}

	var models []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}
		models = append(models, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(models)
	return models, nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

// ReadFile parses a pin document.
func ReadFile(path string) (*FileDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc FileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &doc, nil
}

// WriteFile writes a pin document.
func WriteFile(path string, doc FileDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding pins: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
