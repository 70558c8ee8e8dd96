// Package config provides PostgreSQL database configuration for storage testing.
//
// This package contains factory functions for creating database connections
// using the storage engine's supported PostgreSQL adapters (pgx.Pool, sql.DB,
// sqlx.DB) with a pre-configured test database DSN.
package config
