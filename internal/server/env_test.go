// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	testCases := map[string]struct {
		envVars        map[string]string
		expectedConfig *Config
		expectedError  string
	}{
		"defaults applied": {
			envVars: map[string]string{},
			expectedConfig: &Config{
				HTTPHost:              "0.0.0.0",
				HTTPPort:              "3000",
				DisableStartupMessage: true,
			},
		},
		"custom values": {
			envVars: map[string]string{
				"HTTP_HOST":               "127.0.0.1",
				"HTTP_PORT":               "8080",
				"DISABLE_STARTUP_MESSAGE": "false",
			},
			expectedConfig: &Config{
				HTTPHost:              "127.0.0.1",
				HTTPPort:              "8080",
				DisableStartupMessage: false,
			},
		},
		"port not a number": {
			envVars: map[string]string{
				"HTTP_PORT": "not-a-port",
			},
			expectedError: "HTTP_PORT is not a valid number",
		},
		"port out of range": {
			envVars: map[string]string{
				"HTTP_PORT": "70000",
			},
			expectedError: "HTTP_PORT is out of valid range (1-65535)",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			for key, value := range testCase.envVars {
				t.Setenv(key, value)
			}

			config, err := LoadServerConfig()
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
