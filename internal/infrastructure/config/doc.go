// Package config handles loading and validating authcore configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (AUTHCORE_*)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The token signing key, MQTT password and InfluxDB token should be set
//     via environment variables, not committed config files
//   - The config file should have restricted permissions (0600)
//   - Startup fails when security.jwt.signing_key is missing or shorter
//     than 32 characters
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//	fmt.Println(cfg.API.Port)
package config
