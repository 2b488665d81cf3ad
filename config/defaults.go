package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/tabular"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.uri", "porydex.db")

	v.SetDefault("data.location", "data")
	v.SetDefault("data.s3.region", tabular.DefaultS3Region)
	v.SetDefault("data.s3.endpoint", "")
	v.SetDefault("data.s3.path_style", false)

	v.SetDefault("catalog.default_languages", []int{int(catalog.English)})
	v.SetDefault("catalog.generation", 0) // unpinned
}
