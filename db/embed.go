// Package db provides embedded database schema and migration files.
package db

import _ "embed"

// Schema creates the menu tables. It is idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string
