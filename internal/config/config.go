package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-mfs/internal/types"
)

// Config holds the settings shared by all commands
type Config struct {
	Variant       string `mapstructure:"variant"`
	Major         int    `mapstructure:"major"`
	Minor         int    `mapstructure:"minor"`
	FileTablePath string `mapstructure:"file_table_path"`
	OutputDir     string `mapstructure:"output_dir"`
	RecordDB      string `mapstructure:"record_db"`
	OutputFormat  string `mapstructure:"output_format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("variant", "CSME")
	v.SetDefault("major", 11)
	v.SetDefault("minor", 0)
	v.SetDefault("file_table_path", "")
	v.SetDefault("output_dir", "./mfs-out")
	v.SetDefault("record_db", "")
	v.SetDefault("output_format", "table")
}

// Load reads mfs-config.yaml from the usual locations and the MFS_*
// environment. A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("mfs-config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.mfs")
	v.AddConfigPath("/etc/mfs")

	SetDefaults(v)

	v.SetEnvPrefix("MFS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return Decode(v)
}

// Decode unmarshals the current settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Generation returns the firmware generation the settings name.
func (c *Config) Generation() (types.Generation, error) {
	variant, err := types.ParseVariant(c.Variant)
	if err != nil {
		return types.Generation{}, err
	}
	return types.Generation{Variant: variant, Major: c.Major, Minor: c.Minor}, nil
}
