// Package migrations embeds the goose migrations of the console schema.
package migrations

import "embed"

// Console holds console/*.sql.
//
//go:embed console/*.sql
var Console embed.FS

const ConsoleDir = "console"
