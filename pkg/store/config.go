package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config locates the on-disk layout of a beho installation.
type Config interface {
	BasePath() string
	DataPath() string
	TempPath() string
	LogPath() string
}

// LoadConfig reads .beho.yaml (from $BEHO_CONFIG_PATH or the working
// directory) and BEHO_* environment variables, after loading an optional .env.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	viper.SetDefault("path", "~/.beho")
	viper.SetDefault("log.level", "")
	viper.SetDefault("log.dev", false)
	viper.SetConfigName(".beho") // .yaml is implicit
	viper.SetEnvPrefix("BEHO")
	viper.AutomaticEnv()

	if override := os.Getenv("BEHO_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	return &fileConfig{Path: path}, nil
}

// NewConfig returns a Config rooted at path without consulting viper.
func NewConfig(path string) Config {
	return &fileConfig{Path: path}
}

type fileConfig struct {
	Path string `json:"path"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}

func (f *fileConfig) DataPath() string {
	return filepath.Join(f.Path, "data")
}

func (f *fileConfig) TempPath() string {
	return filepath.Join(f.Path, "tmp")
}

func (f *fileConfig) LogPath() string {
	return filepath.Join(f.Path, "logs")
}
