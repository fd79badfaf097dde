package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Setup
	t.Setenv("KEYMERGER_SERVER_PORT", "9090")
	t.Setenv("KEYMERGER_OUTPUT_SUFFIX", "_merged")

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("server:\n  port: 8080\noutput:\n  suffix: \"_file\"\n  indent: 2\nstorage:\n  type: file\n  file:\n    path: /srv/docs\n"), 0644)
	require.NoError(t, err)

	// Reset viper
	viper.Reset()

	// Execute
	cfg, err := LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 9090, cfg.Server.Port) // Env var should override file
	assert.Equal(t, "_merged", cfg.Output.Suffix)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "/srv/docs", cfg.Storage.File.Path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	viper.Reset()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "_integrated", cfg.Output.Suffix)
	assert.Equal(t, 4, cfg.Output.Indent)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "documents", cfg.Storage.MongoDB.Collection)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KEYMERGER_OUTPUT_INDENT=8\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("KEYMERGER_OUTPUT_INDENT") })
	viper.Reset()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Output.Indent)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	viper.Reset()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Type: "file"},
			Output:  OutputConfig{Suffix: "_integrated", Indent: 4},
			Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "UnknownStorage", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: true},
		{name: "MongoWithoutURI", mutate: func(c *Config) { c.Storage.Type = "mongodb" }, wantErr: true},
		{name: "MongoWithURI", mutate: func(c *Config) {
			c.Storage.Type = "mongodb"
			c.Storage.MongoDB.ConnectionString = "mongodb://localhost:27017"
		}},
		{name: "EmptySuffix", mutate: func(c *Config) { c.Output.Suffix = "" }, wantErr: true},
		{name: "SuffixWithSeparator", mutate: func(c *Config) { c.Output.Suffix = "/x" }, wantErr: true},
		{name: "ZeroIndent", mutate: func(c *Config) { c.Output.Indent = 0 }, wantErr: true},
		{name: "BadLogLevel", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: true},
		{name: "FileLogWithoutPath", mutate: func(c *Config) { c.Logging.Output = "file" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
