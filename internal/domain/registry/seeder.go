package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// ManifestPattern matches the manifest files the seeder reads.
const ManifestPattern = "**/*.{yaml,yml,toml,json}"

// manifestFile is either a single module or a list under "modules".
type manifestFile struct {
	Modules []types.ModuleDescriptor `json:"modules" yaml:"modules" toml:"modules"`
}

// SeedResult counts what a Seed run did.
type SeedResult struct {
	Files   int
	Loaded  int
	Failed  int
	Skipped []string
}

// Seeder loads module manifests from a directory into a Catalog.
type Seeder struct {
	catalog *Catalog
	fsys    fs.FS
	root    string
	log     *zap.Logger
}

// NewSeeder creates a seeder over dir on the local filesystem.
func NewSeeder(catalog *Catalog, dir string, log *zap.Logger) *Seeder {
	return NewSeederFS(catalog, os.DirFS(dir), dir, log)
}

// NewSeederFS creates a seeder over an arbitrary filesystem; root is only
// used in log messages.
func NewSeederFS(catalog *Catalog, fsys fs.FS, root string, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{catalog: catalog, fsys: fsys, root: root, log: log}
}

// Seed registers every module found under the root. A missing root is not
// an error. Unparseable files are counted and skipped.
func (s *Seeder) Seed() (SeedResult, error) {
	var result SeedResult

	if _, err := fs.Stat(s.fsys, "."); err != nil {
		s.log.Info("module manifest directory not found", zap.String("dir", s.root))
		return result, nil
	}

	files, err := doublestar.Glob(s.fsys, ManifestPattern)
	if err != nil {
		return result, fmt.Errorf("failed to scan manifests: %w", err)
	}

	for _, file := range files {
		result.Files++

		modules, err := s.decode(file)
		if err != nil {
			s.log.Warn("failed to load manifest", zap.String("file", file), zap.Error(err))
			result.Failed++
			result.Skipped = append(result.Skipped, file)
			continue
		}

		for _, d := range modules {
			if err := s.catalog.Register(d); err != nil {
				s.log.Warn("invalid module in manifest",
					zap.String("file", file),
					zap.String("key", d.Key),
					zap.Error(err))
				result.Failed++
				continue
			}
			result.Loaded++
		}
	}

	s.log.Info("module manifests seeded",
		zap.String("dir", s.root),
		zap.Int("files", result.Files),
		zap.Int("loaded", result.Loaded),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *Seeder) decode(file string) ([]types.ModuleDescriptor, error) {
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return nil, err
	}

	var unmarshal func([]byte, any) error
	switch strings.ToLower(path.Ext(file)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".toml":
		unmarshal = toml.Unmarshal
	case ".json":
		unmarshal = sonic.Unmarshal
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", path.Ext(file))
	}

	var list manifestFile
	if err := unmarshal(data, &list); err != nil {
		return nil, err
	}
	if len(list.Modules) > 0 {
		return list.Modules, nil
	}

	var single types.ModuleDescriptor
	if err := unmarshal(data, &single); err != nil {
		return nil, err
	}
	if single.Key == "" {
		return nil, fmt.Errorf("manifest defines no modules")
	}
	return []types.ModuleDescriptor{single}, nil
}
