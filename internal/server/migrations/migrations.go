// Package migrations embeds the goose SQL migrations for the identity,
// device and voice sample tables.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
