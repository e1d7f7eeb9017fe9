package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name string `mapstructure:"NAME"`
		Port string `mapstructure:"PORT"`
	}

	FRONTEND struct {
		Origin string `mapstructure:"ORIGIN"`
	}

	ROOM struct {
		CodeLength   int           `mapstructure:"CODE_LENGTH"`
		CleanupDelay time.Duration `mapstructure:"CLEANUP_DELAY"`
		FreeSession  time.Duration `mapstructure:"FREE_SESSION"`
	}
}

var Conf *AppConfig

func LoadConfig() error {
	viper.SetConfigName("application")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("FAM2GETHER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// defaults mirror the values the service shipped with, so running
	// without an application.yaml still works
	viper.SetDefault("App.NAME", "fam2gether")
	viper.SetDefault("App.PORT", ":3001")
	viper.SetDefault("FRONTEND.ORIGIN", "http://localhost:3000")
	viper.SetDefault("ROOM.CODE_LENGTH", 6)
	viper.SetDefault("ROOM.CLEANUP_DELAY", 5*time.Minute)
	viper.SetDefault("ROOM.FREE_SESSION", 30*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Warn().Msg("no application.yaml found, using defaults")
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
