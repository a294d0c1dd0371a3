package db

import "embed"

// sqlSchemas holds the migration files, embedded at compile time.
//
//go:embed migrations/*.sql
var sqlSchemas embed.FS
