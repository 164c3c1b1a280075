// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	testCases := map[string]struct {
		envVars        map[string]string
		expectedConfig *Config
		expectedError  string
	}{
		"missing required variables": {
			envVars:       map[string]string{},
			expectedError: "environment variables not valid",
		},
		"defaults applied": {
			envVars: map[string]string{
				"MYSQL_HOST":     "mysql.internal",
				"MYSQL_USERNAME": "etl",
				"MYSQL_PASSWORD": "secret",
				"MYSQL_DATABASE": "warehouse",
			},
			expectedConfig: &Config{
				Host:     "mysql.internal",
				Port:     3306,
				Username: "etl",
				Password: "secret",
				Database: "warehouse",
			},
		},
		"invalid port": {
			envVars: map[string]string{
				"MYSQL_HOST":     "mysql.internal",
				"MYSQL_PORT":     "70000",
				"MYSQL_USERNAME": "etl",
				"MYSQL_PASSWORD": "secret",
			},
			expectedError: "MYSQL_PORT is out of valid range (1-65535)",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			for key, value := range testCase.envVars {
				t.Setenv(key, value)
			}

			config, err := LoadConfig()
			if testCase.expectedError != "" {
				assert.Nil(t, config)
				require.ErrorIs(t, err, ErrEnvVariablesNotValid)
				assert.ErrorContains(t, err, testCase.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expectedConfig, config)
		})
	}
}

func TestDSN(t *testing.T) {
	t.Parallel()

	config := &Config{
		Host:     "mysql.internal",
		Port:     3306,
		Username: "etl",
		Password: "secret",
		Database: "warehouse",
	}

	assert.Equal(t, "etl:secret@tcp(mysql.internal:3306)/warehouse?parseTime=true", config.DSN(""))
	assert.Equal(t, "etl:secret@tcp(mysql.internal:3306)/staging?parseTime=true", config.DSN("staging"))
}

func TestNormalizeRow(t *testing.T) {
	t.Parallel()

	row := map[string]any{
		"name":  []byte("widget"),
		"count": int64(3),
		"note":  nil,
	}

	assert.Equal(t, map[string]any{
		"name":  "widget",
		"count": int64(3),
		"note":  nil,
	}, normalizeRow(row))
}
