package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactStore saves processed batch outputs to disk under a base
// directory. Artifacts live at fixed names, so each batch overwrites the
// previous one for the same name. Writes are not synchronized; the last
// writer wins.
type ArtifactStore struct {
	basePath string
}

// NewArtifactStore creates the base directory if missing.
func NewArtifactStore(basePath string) (*ArtifactStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &ArtifactStore{basePath: basePath}, nil
}

// Save writes data to the named artifact, truncating any previous
// content. It returns the path of the written file.
func (s *ArtifactStore) Save(name string, data []byte) (string, error) {
	target := filepath.Join(s.basePath, safeFilename(name))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return target, nil
}

func safeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return "artifact"
	}
	return name
}
