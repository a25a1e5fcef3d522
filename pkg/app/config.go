package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/autopeer-io/vfleet/pkg/log"
)

const (
	configFlagName = "config"
	envPrefix      = "VFLEET"
)

// addConfigFlag registers the --config flag on fs.
func (a *App) addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&a.configFile, configFlagName, "c", a.configFile,
		"Read configuration from specified `FILE`, support JSON, TOML, YAML formats.")
}

// loadEnv reads .env from the working directory. Variables already set in the
// process environment win.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// readConfig merges environment variables and the optional config file into
// a.viper. Flag values bound beforehand keep the highest precedence.
func (a *App) readConfig() error {
	a.viper.SetEnvPrefix(envPrefix)
	a.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.viper.AutomaticEnv()

	if a.configFile != "" {
		a.viper.SetConfigFile(a.configFile)
	} else {
		a.viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.viper.AddConfigPath(filepath.Join(home, ".vfleet"))
		}
		a.viper.SetConfigName(a.name)
	}

	if err := a.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read configuration file(%s): %w", a.configFile, err)
	}

	return nil
}

// watchConfig logs changes of the loaded config file. Running components
// keep the values they started with.
func (a *App) watchConfig() {
	if a.viper.ConfigFileUsed() == "" {
		return
	}
	a.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Config file changed, restart to apply", "name", e.Name, "op", e.Op.String())
	})
	a.viper.WatchConfig()
}
