package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/EmundoT/license-auditor/internal/types"
)

// ConfigStore handles project configuration I/O
type ConfigStore interface {
	// Load returns the project configuration, or a zero config when none exists.
	Load() (types.AuditorConfig, error)
	// Save writes the configuration to the YAML config file.
	Save(cfg types.AuditorConfig) error
	// Path returns the YAML config file path.
	Path() string
	// Source returns the file Load read from, or "" when no config exists.
	Source() string
}

var _ ConfigStore = (*FileConfigStore)(nil)

// FileConfigStore reads .license-auditor.yml, falling back to the
// [tool.license-auditor] table of pyproject.toml. The YAML file wins when both exist.
type FileConfigStore struct {
	rootDir string
	yaml    *YAMLStore[types.AuditorConfig]
}

// NewFileConfigStore creates a new FileConfigStore rooted at the project directory
func NewFileConfigStore(rootDir string) *FileConfigStore {
	return &FileConfigStore{
		rootDir: rootDir,
		yaml:    NewYAMLStore[types.AuditorConfig](rootDir, ConfigFile, true),
	}
}

// Path returns the YAML config file path
func (s *FileConfigStore) Path() string {
	return s.yaml.Path()
}

// Source returns the file the configuration is read from
func (s *FileConfigStore) Source() string {
	if s.yaml.Exists() {
		return s.yaml.Path()
	}
	if ok, _ := s.hasPyprojectTable(); ok {
		return s.pyprojectPath()
	}
	return ""
}

// Load reads the project configuration
func (s *FileConfigStore) Load() (types.AuditorConfig, error) {
	if s.yaml.Exists() {
		cfg, err := s.yaml.Load()
		if err != nil {
			return types.AuditorConfig{}, fmt.Errorf("load %s: %w", ConfigFile, err)
		}
		return cfg, nil
	}

	cfg, found, err := s.loadPyproject()
	if err != nil {
		return types.AuditorConfig{}, err
	}
	if found {
		return cfg, nil
	}
	return types.AuditorConfig{}, nil
}

// Save writes the configuration as YAML
func (s *FileConfigStore) Save(cfg types.AuditorConfig) error {
	return s.yaml.Save(cfg)
}

func (s *FileConfigStore) pyprojectPath() string {
	return filepath.Join(s.rootDir, PyprojectFile)
}

type pyprojectTool struct {
	Tool map[string]toml.Primitive `toml:"tool"`
}

func (s *FileConfigStore) hasPyprojectTable() (bool, error) {
	_, found, err := s.loadPyproject()
	return found, err
}

// loadPyproject decodes [tool.license-auditor] when present.
func (s *FileConfigStore) loadPyproject() (types.AuditorConfig, bool, error) {
	var cfg types.AuditorConfig
	path := s.pyprojectPath()

	var doc pyprojectTool
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return cfg, false, fmt.Errorf("parse %s: %w", PyprojectFile, err)
	}

	prim, ok := doc.Tool[PyprojectTable]
	if !ok {
		return cfg, false, nil
	}
	if err := md.PrimitiveDecode(prim, &cfg); err != nil {
		return cfg, false, fmt.Errorf("parse [tool.%s] in %s: %w", PyprojectTable, PyprojectFile, err)
	}
	return cfg, true, nil
}
