// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, CORS, body limits); AppConfig is everything specific to
// this application. The struct is passed to most lifecycle hooks, so any
// configuration needed during startup, request handling, or shutdown
// lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token configuration
	JWTSecret string        // Secret for signing bearer tokens (must be strong in production)
	JWTIssuer string        // Issuer claim on issued tokens
	TokenTTL  time.Duration // Lifetime of issued tokens

	// Trash retention
	TrashRetention     time.Duration // How long soft-deleted orders stay restorable
	TrashSweepInterval time.Duration // How often the purge sweep runs
}
