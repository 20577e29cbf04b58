package config

import (
	"fmt"
	"strings"
)

// requiredFields maps environments to the Config fields that must be
// non-empty there. Development and test run on defaults, so only the fields
// with no sensible default are checked.
var requiredFields = map[Environment][]string{
	Development: {"ServerPort", "DBHost", "DBName"},
	Test:        {"ServerPort", "DBHost", "DBName"},
	CI:          {"ServerPort", "DBHost", "DBName", "DBPassword", "JWTSecret"},
	Production:  {"ServerPort", "DBHost", "DBName", "DBPassword", "JWTSecret"},
}

// ValidateConfig checks that the configuration carries everything the
// current environment requires
func ValidateConfig(cfg *Config) error {
	values := map[string]string{
		"ServerPort": cfg.ServerPort,
		"DBHost":     cfg.DBHost,
		"DBName":     cfg.DBName,
		"DBPassword": cfg.DBPassword,
		"JWTSecret":  cfg.JWTSecret,
	}

	var missing []string
	for _, field := range requiredFields[GetEnvironment()] {
		if values[field] == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
