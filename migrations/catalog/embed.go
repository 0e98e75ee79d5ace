// Package catalogmigrations embeds the goose migrations of the catalog schema.
package catalogmigrations

import "embed"

//go:embed *.sql
var FS embed.FS
