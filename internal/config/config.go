package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"Server"`
	DB       DBConfig       `yaml:"DB"`
	Token    TokenConfig    `yaml:"Token"`
	Withdraw WithdrawConfig `yaml:"Withdraw"`
	Review   ReviewConfig   `yaml:"Review"`
	Logger   LoggerConfig   `yaml:"Logger"`
}

type ServerConfig struct {
	Port string `yaml:"port" default:"8080"`
}

type DBConfig struct {
	DatabaseURL        string        `yaml:"databaseURL"`
	MaxOpenConnection  int           `yaml:"maxOpenConnection" default:"15"`
	MaxIdleConnection  int           `yaml:"maxIdleConnection" default:"10"`
	ConnectionLifetime time.Duration `yaml:"connectionLifetime" default:"3600"`
}

type TokenConfig struct {
	AdminToken string `yaml:"adminToken" default:"test-token"`
}

type WithdrawConfig struct {
	MinAmount      float64 `yaml:"minAmount" default:"1000"`
	CurrencySymbol string  `yaml:"currencySymbol" default:"RUB"`
}

type ReviewConfig struct {
	PageSize int `yaml:"pageSize" default:"5"`
}

type LoggerConfig struct {
	LoggerLevel string `yaml:"loggerLevel" default:"info"`
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./internal/config")

	viper.SetDefault("Server.port", "8080")
	viper.SetDefault("DB.maxOpenConnection", 15)
	viper.SetDefault("DB.maxIdleConnection", 10)
	viper.SetDefault("DB.connectionLifetime", 3600)
	viper.SetDefault("Withdraw.minAmount", 1000.0)
	viper.SetDefault("Withdraw.currencySymbol", "RUB")
	viper.SetDefault("Review.pageSize", 5)
	viper.SetDefault("Logger.loggerLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("config file not found, using env and defaults")
		} else {
			log.Println("error reading config file")
		}
	} else {
		log.Printf("using config file: %s", viper.ConfigFileUsed())
	}

	var config Config

	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &config, nil
}
