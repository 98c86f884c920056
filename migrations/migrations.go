// Package migrations embeds the goose SQL migrations so the binary
// can migrate its database without carrying files around.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
