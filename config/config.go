// Package config loads run configuration from YAML or TOML files and
// resolves default file locations.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/fwojciec/pkgcat"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pkgcat"

	// DefaultConfigFile is looked up in the current directory.
	DefaultConfigFile = ".pkgcat.yaml"

	// DBEnv overrides the default database path.
	DBEnv = "PKGCAT_DB"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk configuration. Unset fields keep their defaults.
// Durations use Go duration syntax ("1s", "250ms").
type File struct {
	Concurrency    *int              `yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
	HostRPS        *float64          `yaml:"host_rps,omitempty" toml:"host_rps,omitempty"`
	Retries        *int              `yaml:"retries,omitempty" toml:"retries,omitempty"`
	BaseDelay      string            `yaml:"base_delay,omitempty" toml:"base_delay,omitempty"`
	MaxDelay       string            `yaml:"max_delay,omitempty" toml:"max_delay,omitempty"`
	ProbeTimeout   string            `yaml:"probe_timeout,omitempty" toml:"probe_timeout,omitempty"`
	Deadline       string            `yaml:"deadline,omitempty" toml:"deadline,omitempty"`
	ManifestPath   string            `yaml:"manifest_path,omitempty" toml:"manifest_path,omitempty"`
	ManifestTag    string            `yaml:"manifest_tag,omitempty" toml:"manifest_tag,omitempty"`
	ProbeSecondary *bool             `yaml:"probe_secondary,omitempty" toml:"probe_secondary,omitempty"`
	Categories     []pkgcat.Category `yaml:"categories,omitempty" toml:"categories,omitempty"`
}

// LoadConfigFile loads a configuration file. Files ending in .toml are
// decoded as TOML, everything else as YAML. If the file does not exist,
// it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if isTOML(path) {
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, pkgcat.Errorf(pkgcat.EINVALID, "parsing %s: %v", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, pkgcat.Errorf(pkgcat.EINVALID, "parsing %s: %v", path, err)
		}
	}
	return &f, nil
}

// Apply overlays the file's settings onto cfg.
func (f *File) Apply(cfg *pkgcat.Config) error {
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	if f.HostRPS != nil {
		cfg.HostRPS = *f.HostRPS
	}
	if f.Retries != nil {
		cfg.Retries = *f.Retries
	}
	for _, d := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"base_delay", f.BaseDelay, &cfg.BaseDelay},
		{"max_delay", f.MaxDelay, &cfg.MaxDelay},
		{"probe_timeout", f.ProbeTimeout, &cfg.ProbeTimeout},
		{"deadline", f.Deadline, &cfg.Deadline},
	} {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return pkgcat.Errorf(pkgcat.EINVALID, "invalid %s %q", d.name, d.value)
		}
		*d.dst = v
	}
	if f.ManifestPath != "" {
		cfg.ManifestPath = f.ManifestPath
	}
	if f.ManifestTag != "" {
		cfg.ManifestTag = f.ManifestTag
	}
	if f.ProbeSecondary != nil {
		cfg.ProbeSecondary = *f.ProbeSecondary
	}
	if len(f.Categories) > 0 {
		cfg.Taxonomy = append(pkgcat.Taxonomy(nil), f.Categories...)
	}
	return nil
}

// MarshalTaxonomy encodes a taxonomy as a configuration file containing
// only categories, in the format implied by path's extension.
func MarshalTaxonomy(tax pkgcat.Taxonomy, path string) ([]byte, error) {
	f := File{Categories: tax}
	if isTOML(path) {
		return toml.Marshal(f)
	}
	return yaml.Marshal(f)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pkgcat.yaml or .pkgcat.toml in the current directory
// 3. Look for config.yaml or config.toml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates,
			filepath.Join(cwd, DefaultConfigFile),
			filepath.Join(cwd, ".pkgcat.toml"),
		)
	}
	candidates = append(candidates,
		filepath.Join(XDGConfigDir(), "config.yaml"),
		filepath.Join(XDGConfigDir(), "config.toml"),
	)
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// XDGDataDir returns the XDG data directory for pkgcat.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pkgcat.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DBPath returns the snapshot database path: $PKGCAT_DB if set, otherwise
// pkgcat.db in the XDG data directory.
func DBPath() string {
	if p := os.Getenv(DBEnv); p != "" {
		return p
	}
	return filepath.Join(XDGDataDir(), "pkgcat.db")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
