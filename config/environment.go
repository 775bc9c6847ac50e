package config

import (
	"os"
	"strings"
)

// Known deployment environments.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var validEnvironments = []string{EnvDevelopment, EnvStaging, EnvProduction}

// environmentVars are consulted in order by Environment.
var environmentVars = []string{"ENVIRONMENT", "APP_ENV"}

// Environment returns the deployment environment from the process
// environment, or EnvDevelopment when none is set.
func Environment() string {
	for _, key := range environmentVars {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return strings.ToLower(v)
		}
	}
	return EnvDevelopment
}

// IsProduction reports whether the process is flagged as a production deployment.
func IsProduction() bool {
	return isProductionName(Environment())
}

func isProductionName(env string) bool {
	switch strings.ToLower(env) {
	case EnvProduction, "prod":
		return true
	default:
		return false
	}
}

// normalizeEnvironment lowercases env and maps the "prod" alias to
// EnvProduction.
func normalizeEnvironment(env string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if isProductionName(env) {
		return EnvProduction
	}
	return env
}

func isValidEnvironment(env string) bool {
	for _, v := range validEnvironments {
		if env == v {
			return true
		}
	}
	return false
}
