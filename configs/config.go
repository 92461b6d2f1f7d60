package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Prettify bool   `mapstructure:"prettify"`
}

type FilterConfig struct {
	Program string `mapstructure:"program"`
}

type RangeConfig struct {
	StartSlot uint64 `mapstructure:"startSlot"`
	EndSlot   uint64 `mapstructure:"endSlot"`
}

type ReporterConfig struct {
	Threshold uint64 `mapstructure:"threshold"`
}

type SourceType string

const (
	SourceTypeFile SourceType = "file"
	SourceTypeS3   SourceType = "s3"
)

type FileSourceConfig struct {
	Path string `mapstructure:"path"`
}

type S3SourceConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

type SourceConfig struct {
	Type    string           `mapstructure:"type"`
	Workers int              `mapstructure:"workers"`
	File    FileSourceConfig `mapstructure:"file"`
	S3      S3SourceConfig   `mapstructure:"s3"`
}

type PublisherConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Brokers  string `mapstructure:"brokers"`
	Topic    string `mapstructure:"topic"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ClickhouseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Table    string `mapstructure:"table"`
}

type StorageConfig struct {
	Clickhouse *ClickhouseConfig `mapstructure:"clickhouse"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Range     RangeConfig     `mapstructure:"range"`
	Reporter  ReporterConfig  `mapstructure:"reporter"`
	Source    SourceConfig    `mapstructure:"source"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

var Cfg Config

func LoadConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file, %s", err)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")

		// the sidecar is usually driven purely by flags, so a missing
		// config file is not an error
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error reading config file, %s", err)
			}
		}
	}

	// sets e.g. FILTER_PROGRAM to filter.program
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv()

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		return fmt.Errorf("error unmarshalling config: %v", err)
	}

	return nil
}
