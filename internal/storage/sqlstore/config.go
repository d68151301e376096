package sqlstore

// Config holds SQL connection and behavior settings
type Config struct {
	// Driver selects the dialect: sqlite, postgres or mysql
	Driver string

	// DSN is the driver-specific data source name. For sqlite it is a file
	// path or ":memory:".
	DSN string

	// MaxTxRetries bounds retries of transactions that lost an insert race
	// or hit a serialization failure
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for SQL configuration
func DefaultConfig() Config {
	return Config{
		Driver:       "sqlite",
		DSN:          "corrgame.db",
		MaxTxRetries: 10,
	}
}
