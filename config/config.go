package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	DatabaseName     string `mapstructure:"database_name"`
	Collection       string `mapstructure:"collection"`
}

// StorageConfig selects where documents are read from and written to.
type StorageConfig struct {
	Type    string          `mapstructure:"type" validate:"oneof=file mongodb"`
	MongoDB DatabaseConfig  `mapstructure:"mongodb"`
	File    FileStoreConfig `mapstructure:"file"`
}

// FileStoreConfig holds the file system storage configuration.
type FileStoreConfig struct {
	Path string `mapstructure:"path"` // Base directory for relative paths
}

// OutputConfig controls naming and formatting of merged documents.
type OutputConfig struct {
	Suffix string `mapstructure:"suffix" validate:"required,excludesall=/\\"`
	Indent int    `mapstructure:"indent" validate:"min=1,max=16"`
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	Output     string `mapstructure:"output" validate:"omitempty,oneof=stdout stderr file"`
	FilePath   string `mapstructure:"file_path"`   // Path to log file
	MaxSize    int    `mapstructure:"max_size"`    // Megabytes
	MaxBackups int    `mapstructure:"max_backups"` // Number of backups
	MaxAge     int    `mapstructure:"max_age"`     // Days
	Compress   bool   `mapstructure:"compress"`    // Compress backups
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("storage.type", "file")
	viper.SetDefault("storage.file.path", "")
	viper.SetDefault("storage.mongodb.connection_string", "")
	viper.SetDefault("storage.mongodb.database_name", "keymerger")
	viper.SetDefault("storage.mongodb.collection", "documents")
	viper.SetDefault("output.suffix", "_integrated")
	viper.SetDefault("output.indent", 4)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stderr")
	viper.SetDefault("logging.file_path", "")
	viper.SetDefault("logging.max_size", 10)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 28)
	viper.SetDefault("logging.compress", false)
}

// LoadConfig reads the configuration from an optional .env file, config files and
// environment variables. When configFile is empty the usual locations are searched
// and a missing file is not an error.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("KEYMERGER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the decoded configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Storage.Type == "mongodb" && c.Storage.MongoDB.ConnectionString == "" {
		return errors.New("invalid configuration: storage.mongodb.connection_string is required when storage.type is mongodb")
	}
	if strings.ToLower(c.Logging.Output) == "file" && c.Logging.FilePath == "" {
		return errors.New("invalid configuration: logging.file_path is required when logging.output is file")
	}
	return nil
}
