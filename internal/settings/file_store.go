package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// FileStore keeps settings in a YAML file. Keys missing from the file keep
// their built-in defaults.
type FileStore struct {
	mutex sync.Mutex
	path  string
}

// NewFileStore creates a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns $HOME/.bizctl/pagination.yml.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrConfigDirUnknown, err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.PaginationFileName), nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the file. A missing file reports bizapi.ErrSettingsNotFound.
func (s *FileStore) Get(ctx context.Context) (bizapi.PaginationSettings, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return bizapi.PaginationSettings{}, bizapi.ErrSettingsNotFound
	}

	if err != nil {
		return bizapi.PaginationSettings{}, fmt.Errorf("reading %s: %w", s.path, err)
	}

	settings := bizapi.DefaultPaginationSettings()

	err = yaml.Unmarshal(data, &settings)
	if err != nil {
		return bizapi.PaginationSettings{}, fmt.Errorf("%w: %s: %w", ErrCorruptSettingsData, s.path, err)
	}

	return settings, nil
}

// Save writes settings, creating the parent directory if needed.
func (s *FileStore) Save(ctx context.Context, settings bizapi.PaginationSettings) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	tmp := s.path + ".tmp"

	err = os.WriteFile(tmp, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}

	err = os.Rename(tmp, s.path)
	if err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}
