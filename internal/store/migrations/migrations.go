// Package migrations embeds the schema of the report database, one directory per dialect.
package migrations

import "embed"

// FS holds sqlite/, postgres/ and mysql/ migration files.
//
//go:embed sqlite postgres mysql
var FS embed.FS

// Dir is the root of FS passed to the migrator.
const Dir = "."
