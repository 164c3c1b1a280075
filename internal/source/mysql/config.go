// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package mysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ErrEnvVariablesNotValid wraps failures reading the connector configuration.
var ErrEnvVariablesNotValid = errors.New("environment variables not valid")

// Config carries the MySQL connection settings read from the environment.
type Config struct {
	Host     string `env:"MYSQL_HOST,required"`
	Port     int    `env:"MYSQL_PORT" envDefault:"3306"`
	Username string `env:"MYSQL_USERNAME,required"`
	Password string `env:"MYSQL_PASSWORD,required"`
	Database string `env:"MYSQL_DATABASE"`
}

// DSN renders the driver connection string for database, falling back to the
// configured default database when the job does not select one.
func (c *Config) DSN(database string) string {
	if database == "" {
		database = c.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.Username, c.Password, c.Host, c.Port, database)
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
		envError = append(envError, "MYSQL_PORT is out of valid range (1-65535)")
	}

	if len(envError) > 0 {
		return fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, strings.Join(envError, ", "))
	}
	return nil
}
