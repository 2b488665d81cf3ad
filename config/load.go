package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/porydex/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper
var checked []Source

// Source is a configuration file that was looked for.
type Source struct {
	Path  string `json:"path"`
	Found bool   `json:"found"`
}

// Load reads the configuration from the standard locations. The result is
// cached until Reset.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	cfg, err := unmarshal(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// LoadFromFile reads defaults, then the given file, then the environment.
// The standard file locations are skipped.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	if err := mergeFile(v, path); err != nil {
		return nil, err
	}
	checked = []Source{{Path: path, Found: true}}
	viperInstance = v
	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// Sources lists the configuration files checked by the last load, lowest
// precedence first.
func Sources() []Source {
	out := make([]Source, len(checked))
	copy(out, checked)
	return out
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	checked = nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}
	v := newViper()
	checked = mergeConfigFiles(v)
	viperInstance = v
	return v
}

// findProjectConfig walks up from the working directory looking for
// porydex.toml. Returns "" if there is none.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles merges the user and project files into v's config layer,
// below environment variables. Nested tables are merged key by key, so a
// project file setting data.location keeps the user's data.s3 settings.
func mergeConfigFiles(v *viper.Viper) []Source {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, UserDir, UserConfigFile))
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, project)
	}

	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		src := Source{Path: path}
		if _, err := os.Stat(path); err == nil {
			// unreadable files are skipped; Validate catches the consequences
			src.Found = mergeFile(v, path) == nil
		}
		sources = append(sources, src)
	}
	return sources
}

func mergeFile(v *viper.Viper, path string) error {
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("toml")
	if err := file.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := v.MergeConfigMap(file.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", path)
	}
	return nil
}
