package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyleking/sqlitegui/internal/config"
)

func TestRunConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		wantErr  bool
		contains []string
		excludes []string
	}{
		{
			name: "basic configuration display",
			cfg: &config.Config{
				Database: config.DatabaseConfig{
					Path:         "~/data/shop.db",
					Driver:       "auto",
					QueryTimeout: "30s",
				},
				Queries: config.QueriesConfig{
					Directory: "~/.config/sqlitegui/queries",
				},
				Logging: config.LoggingConfig{
					Level:  "info",
					Format: "text",
					Output: "stdout",
				},
			},
			contains: []string{
				"Active Configuration:",
				"Database:",
				"Path: ~/data/shop.db",
				"Driver: auto",
				"Query Timeout: 30s",
				"Queries:",
				"Directory: ~/.config/sqlitegui/queries",
				"Logging:",
				"Level: info",
				"Format: text",
				"Output: stdout",
				"Debug:",
				"Enabled: false",
				"Verbose: false",
			},
			excludes: []string{"File:", "Raw Configuration (JSON):"},
		},
		{
			name: "configuration with debug enabled",
			cfg: &config.Config{
				Database: config.DatabaseConfig{
					Path:         "/tmp/test.duckdb",
					Driver:       "duckdb",
					QueryTimeout: "10s",
				},
				Logging: config.LoggingConfig{
					Level:  "debug",
					Format: "json",
					Output: "file",
					File:   "/tmp/test.log",
				},
				Debug: config.DebugConfig{
					Enabled: true,
					Verbose: true,
				},
			},
			contains: []string{
				"Path: /tmp/test.duckdb",
				"Driver: duckdb",
				"Level: debug",
				"Format: json",
				"Output: file",
				"File: /tmp/test.log",
				"Enabled: true",
				"Verbose: true",
				"Raw Configuration (JSON):",
				`"query_timeout": "10s"`,
			},
		},
		{
			name:    "nil configuration error",
			cfg:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := RunConfigWithConfig(&buf, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)

			output := buf.String()
			for _, expected := range tt.contains {
				assert.Contains(t, output, expected)
			}

			for _, unexpected := range tt.excludes {
				assert.NotContains(t, output, unexpected)
			}
		})
	}
}
