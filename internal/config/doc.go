// Package config manages application configuration for the accounts API.
//
// Configuration is read from environment variables. A .env file in the
// working directory, if present, is loaded first and never overrides
// variables that are already set.
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: listen address, timeouts, CORS origins, store call bound
//   - DatabaseConfig: SurrealDB connection and migrations directory
//   - RedisConfig: optional account read cache
//   - SecurityConfig: bcrypt cost
//
// # Environment Variables
//
//	SERVER_HOST, SERVER_PORT   - listen address (default: 127.0.0.1:8080)
//	SERVER_ENV                 - development | production | test
//	STORE_TIMEOUT              - upper bound on each store call (default: 10s)
//	DB_HOST, DB_PORT           - SurrealDB endpoint (default: localhost:8000)
//	DB_NAMESPACE, DB_DATABASE  - SurrealDB namespace and database
//	DB_USER, DB_PASSWORD       - SurrealDB root credentials
//	DB_MIGRATIONS_DIR          - .surql files applied at startup
//	REDIS_ADDR                 - enables the account cache when set
//	REDIS_TTL                  - cache entry lifetime (default: 5m)
//	BCRYPT_COST                - password hashing cost (default: 12)
//	LOG_LEVEL                  - debug | info | warn | error
package config
