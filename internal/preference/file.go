package preference

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"amazetimes/internal/i18n"
)

// fileDocument is the on-disk YAML layout.
type fileDocument struct {
	Language string `yaml:"amazetimes-language"`
}

// FilePersister stores the preference in a small YAML file.
type FilePersister struct {
	path string
}

// NewFilePersister returns a persister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// DefaultFilePath returns $XDG_CONFIG_HOME/amazetimes/preferences.yaml or its platform equivalent.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "amazetimes", "preferences.yaml"), nil
}

// Load implements Persister. A missing file is not an error.
func (f *FilePersister) Load(_ context.Context) (string, error) {
	// #nosec G304 -- path comes from the operator, not from request input
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read preference file: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		// 壊れたファイルはデフォルト扱い
		return "", nil
	}
	return doc.Language, nil
}

// Save implements Persister.
func (f *FilePersister) Save(_ context.Context, lang i18n.Language) error {
	data, err := yaml.Marshal(fileDocument{Language: string(lang)})
	if err != nil {
		return fmt.Errorf("encode preference: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("create preference dir: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write preference file: %w", err)
	}
	return nil
}
