package config

import (
	"strings"

	"github.com/spf13/viper"
)

// DefaultImageURL is the placeholder avatar stored when a user submits a
// blank image URL. Overridable through config like everything else.
const DefaultImageURL = "https://cdn.pixabay.com/photo/2016/08/08/09/17/avatar-1577909_960_720.png"

type Config struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	DatabasePath    string `mapstructure:"database_path"`
	TemplatesDir    string `mapstructure:"templates_dir"`
	DefaultImageURL string `mapstructure:"default_image_url"`
}

// Load reads configuration from blogly.yaml (if present) and BLOGLY_*
// environment variables, falling back to defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("database_path", "blogly.db")
	v.SetDefault("templates_dir", "web/templates")
	v.SetDefault("default_image_url", DefaultImageURL)

	v.SetConfigName("blogly")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("BLOGLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
