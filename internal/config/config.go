package config

// ServerConfig holds configuration for the roadmap server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (":memory:" for testing)

	// Workers caps the optimizer pool width. 0 means derive from the
	// core count.
	Workers int
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		DBPath:    "roadmap.db",
	}
}
