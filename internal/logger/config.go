// internal/logger/config.go
package logger

type Config struct {
	LogFile     string
	MaxSize     int  // megabytes
	MaxAge      int  // days
	MaxBackups  int  // number of files
	Compress    bool // gzip rotated files
	Development bool
	// Console mirrors log output to stdout. The TUI turns this off.
	Console bool
	// Pretty switches the console output to the colored CLI encoder.
	Pretty bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "launchpad.log",
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: false,
		Console:     true,
	}
}
