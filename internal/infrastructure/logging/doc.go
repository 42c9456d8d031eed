// Package logging provides structured logging for authcore.
//
// It wraps log/slog with:
//
//   - JSON output for production, text for development
//   - Default fields (service=authcore, version) on all entries
//   - Level-based filtering (debug, info, warn, error)
//   - Redaction of token, authorization and signing-key attributes
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 8080)
//	logger.Error("failed to connect", "error", err)
//
// Never log plaintext passwords. The one exception is the generated first-boot
// administrator password, which is logged once at WARN so an operator can
// sign in.
package logging
