// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package hive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ErrEnvVariablesNotValid wraps failures reading the connector configuration.
var ErrEnvVariablesNotValid = errors.New("environment variables not valid")

// Config carries the Hive connection settings, read from the environment the
// same way the credentials file of the original deployment was.
type Config struct {
	Host     string `env:"HIVE_HOST,required"`
	Port     int    `env:"HIVE_PORT" envDefault:"10000"`
	Username string `env:"HIVE_USERNAME,required"`
	Password string `env:"HIVE_PASSWORD,required"`
}

// LoadConfig reads and validates the connector configuration.
func LoadConfig() (*Config, error) {
	var envVars Config
	if err := env.Parse(&envVars); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, err.Error())
	}

	if err := validateEnvironmentVariables(&envVars); err != nil {
		return nil, err
	}
	return &envVars, nil
}

func validateEnvironmentVariables(envVars *Config) error {
	envError := make([]string, 0)

	if envVars.Port < 1 || envVars.Port > 65535 {
		envError = append(envError, "HIVE_PORT is out of valid range (1-65535)")
	}

	if len(envError) > 0 {
		return fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, strings.Join(envError, ", "))
	}
	return nil
}
