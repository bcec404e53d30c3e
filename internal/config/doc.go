// Package config handles configuration loading for quill.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. A missing file is not an error; the defaults are enough to run
// once the model API key is exported.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from QUILL_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/quill/quill.yaml
//  3. ~/.config/quill/quill.yaml
//
// # Sections
//
//	database:
//	  path: "~/.local/share/quill/quill.db"
//
//	model:
//	  name: "gemini-2.0-flash"
//	  timeout: "60s"
//
//	chat:
//	  history_window: 64   # transcript messages sent per model call, 0 = all
//	  max_steps: 16        # model turns allowed per user input
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Environment Variable Expansion
//
// Values can reference environment variables with ${VAR_NAME}; unset
// variables expand to empty strings.
package config
