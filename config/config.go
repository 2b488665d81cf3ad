// Package config loads porydex configuration with Viper.
//
// Sources, lowest precedence first: defaults, ~/.porydex/config.toml, the
// nearest porydex.toml found walking up from the working directory, and
// PORYDEX_* environment variables (PORYDEX_DATABASE_URI, ...). Command flags
// override all of these.
package config

import (
	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/tabular"
)

// Config is the porydex configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Data     DataConfig     `mapstructure:"data" toml:"data"`
	Catalog  CatalogConfig  `mapstructure:"catalog" toml:"catalog"`
}

// DatabaseConfig locates the store.
type DatabaseConfig struct {
	// URI is a SQLite path or a postgres:// URI.
	URI string `mapstructure:"uri" toml:"uri"`
}

// DataConfig locates the CSV reference files.
type DataConfig struct {
	Location string   `mapstructure:"location" toml:"location"` // directory or s3://bucket/prefix
	S3       S3Config `mapstructure:"s3" toml:"s3"`
}

// S3Config configures S3 data locations. Credentials come from the default
// AWS chain (AWS_ACCESS_KEY_ID, shared config, ...).
type S3Config struct {
	Region    string `mapstructure:"region" toml:"region"`
	Endpoint  string `mapstructure:"endpoint" toml:"endpoint"` // optional, e.g. MinIO
	PathStyle bool   `mapstructure:"path_style" toml:"path_style"`
}

// CatalogConfig sets defaults for catalog queries.
type CatalogConfig struct {
	DefaultLanguages []int `mapstructure:"default_languages" toml:"default_languages"`
	// Generation pins sessions by default; 0 leaves them unpinned.
	Generation int `mapstructure:"generation" toml:"generation"`
}

// File names
const (
	UserDir         = ".porydex"
	UserConfigFile  = "config.toml"
	ProjectFileName = "porydex.toml"
	EnvPrefix       = "PORYDEX"
)

// Languages returns the default languages in preference order.
func (c *Config) Languages() []catalog.LanguageID {
	out := make([]catalog.LanguageID, len(c.Catalog.DefaultLanguages))
	for i, id := range c.Catalog.DefaultLanguages {
		out[i] = catalog.LanguageID(id)
	}
	return out
}

// Pin returns the default generation pin; zero is unpinned.
func (c *Config) Pin() catalog.GenerationID {
	return catalog.GenerationID(c.Catalog.Generation)
}

// S3Options converts the S3 settings for tabular.Parse.
func (c *Config) S3Options() tabular.S3Options {
	return tabular.S3Options{
		Region:    c.Data.S3.Region,
		Endpoint:  c.Data.S3.Endpoint,
		PathStyle: c.Data.S3.PathStyle,
	}
}
