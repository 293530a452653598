// Package migrations embeds the goose SQL migrations so the API and the
// operator CLI apply the same schema without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
