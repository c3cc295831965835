package migrations

import "embed"

// FS holds the goose SQL migrations so the binary can migrate without the
// source tree next to it.
//
//go:embed *.sql
var FS embed.FS
