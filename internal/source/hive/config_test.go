// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package hive

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
				"HIVE_HOST":     "hive.internal",
				"HIVE_USERNAME": "etl",
				"HIVE_PASSWORD": "secret",
			},
			expectedConfig: &Config{
				Host:     "hive.internal",
				Port:     10000,
				Username: "etl",
				Password: "secret",
			},
		},
		"invalid port": {
			envVars: map[string]string{
				"HIVE_HOST":     "hive.internal",
				"HIVE_PORT":     "0",
				"HIVE_USERNAME": "etl",
				"HIVE_PASSWORD": "secret",
			},
			expectedError: "HIVE_PORT is out of valid range (1-65535)",
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
