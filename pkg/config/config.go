// Package config loads rivalspatch settings from defaults, an optional YAML
// file and RIVALSPATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rivalspatch/pkg/locate"
)

const (
	AppName   = "rivalspatch"
	EnvPrefix = "RIVALSPATCH"
)

// Config stores all configuration of the application.
type Config struct {
	Install  InstallConfig  `mapstructure:"install"`
	Payload  PayloadConfig  `mapstructure:"payload"`
	Patch    PatchConfig    `mapstructure:"patch"`
	Identity IdentityConfig `mapstructure:"identity"`
	Log      LogConfig      `mapstructure:"log"`
}

// InstallConfig describes where the game client lives.
type InstallConfig struct {
	VersionsDir    string `mapstructure:"versionsDir"`
	TexturesSubdir string `mapstructure:"texturesSubdir"`
	SkySubdir      string `mapstructure:"skySubdir"`
}

// PayloadConfig describes where texture archives are looked up.
type PayloadConfig struct {
	Dir         string   `mapstructure:"dir"`
	DefaultName string   `mapstructure:"defaultName"`
	Keywords    []string `mapstructure:"keywords"`
	SkyArchive  string   `mapstructure:"skyArchive"`
}

// PatchConfig tunes the tree patcher.
type PatchConfig struct {
	BackupsDir string   `mapstructure:"backupsDir"`
	Exclude    []string `mapstructure:"exclude"`
}

// IdentityConfig locates the user lock file.
type IdentityConfig struct {
	LockFile string `mapstructure:"lockFile"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Dir returns the per-user configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", AppName)
}

func defaultPayloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "Documents", "rivalsPayload")
}

// Load reads configuration from configPath, or from rivalspatch.yaml in the
// working directory or Dir() when configPath is empty. A missing config file
// is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
	}

	v.SetDefault("install.versionsDir", locate.DefaultVersionsDir())
	v.SetDefault("install.texturesSubdir", locate.DefaultTexturesSubdir)
	v.SetDefault("install.skySubdir", locate.DefaultSkySubdir)
	v.SetDefault("payload.dir", defaultPayloadDir())
	v.SetDefault("payload.defaultName", "dark-textures-rivals.zip")
	v.SetDefault("payload.keywords", []string{"dark", "texture"})
	v.SetDefault("payload.skyArchive", "skyboxes.zip")
	v.SetDefault("patch.backupsDir", "")
	v.SetDefault("patch.exclude", []string{})
	v.SetDefault("identity.lockFile", filepath.Join(Dir(), "user.lock"))
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}
