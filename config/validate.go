package config

import "github.com/teranos/porydex/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return errors.WithHint(errors.New("database.uri cannot be empty"),
			"set it in porydex.toml or PORYDEX_DATABASE_URI")
	}
	if c.Data.Location == "" {
		return errors.New("data.location cannot be empty")
	}

	// 0 = unpinned, negative = invalid
	if c.Catalog.Generation < 0 {
		return errors.Newf("catalog.generation must be >= 0, got %d", c.Catalog.Generation)
	}

	if len(c.Catalog.DefaultLanguages) == 0 {
		return errors.New("catalog.default_languages cannot be empty")
	}
	for _, id := range c.Catalog.DefaultLanguages {
		if id <= 0 {
			return errors.Newf("catalog.default_languages must hold language ids > 0, got %d", id)
		}
	}
	return nil
}
