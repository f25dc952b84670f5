// Package config provides configuration management for the myip command.
//
// The package uses a Provider interface to abstract configuration loading, with the
// primary implementation being filesystem-based configuration via YAML files.
//
// # Configuration Structure
//
// Configuration is structured as follows:
//
//	resolution:
//	  timeout: 10s          # Overall budget for one resolution attempt
//	  order: [dns, http]    # Strategy priority, tried strictly in order
//	http:
//	  endpoints:            # Optional, replaces the builtin origin list
//	    - url: https://api.ipify.org
//	      extract: plain    # plain, quoted or json
//	      version: "4"      # any, 4 or 6
//
// # Basic Usage
//
// Load configuration using the default path (~/.myip/config.yaml):
//
//	provider := config.New()
//	cfg, err := provider.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Load configuration from a specific path:
//
//	provider := config.NewWithPath(filesys.OS(), "/etc/myip/config.yaml")
//	cfg, err := provider.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Configuration Validation
//
// The package performs validation of loaded configuration:
//   - Resolution timeout must be at least 1 second
//   - Resolution order must be non-empty and name only known strategies
//   - Custom HTTP endpoints must carry a URL and valid extract/version values
//
// # Default Configuration
//
// If no configuration file exists, the following defaults are used:
//   - Timeout: 10 seconds
//   - Order: dns, then http
//   - HTTP endpoints: the builtin origin list
//
// # Thread Safety
//
// Configuration loading is thread-safe. However, once loaded, the Config
// struct should be treated as immutable. If configuration changes are needed,
// a new Config should be loaded.
//
// # Error Handling
//
// The package defines several error types:
//   - ErrInvalidConfig: Configuration validation failed
//   - ErrNoConfig: Configuration file not found (returns defaults)
//
// The package is designed to be extensible, allowing for additional
// configuration providers to be implemented (e.g., environment variables,
// remote configuration services) by implementing the Provider interface.
package config
