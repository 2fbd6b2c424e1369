// Package config loads postpilot's configuration.
//
// # Resolution Order
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/postpilot/config.toml
//  3. A .env file in the working directory, loaded into the environment
//     without replacing variables that are already set
//  4. Environment variables, which win over the file
//
// A missing config file is not an error. A malformed one is.
//
// # TOML Format
//
//	api_url = "https://auto-posting-backend-production.up.railway.app"
//	request_timeout_seconds = 15
//	poll_seconds = 2
//	rate_limit = 0          # requests per second, 0 disables limiting
//	cache_backend = "file"  # file, sqlite or none
//	cache_path = ""         # empty picks the backend's default location
//	log_file = "~/.local/share/postpilot/postpilot.log"
//	log_level = "info"
//
// # Environment
//
//   - POSTPILOT_API_URL: backend origin
//   - NEXT_PUBLIC_API_URL: consulted when POSTPILOT_API_URL is unset
//   - POSTPILOT_LOG_LEVEL: debug, info, warn or error
//
// Tilde paths are expanded for cache_path and log_file.
package config
