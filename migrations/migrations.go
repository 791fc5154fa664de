// Package migrations ships the SQL schema and seed data inside the binary.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sql seeds
var files embed.FS

// SQL returns the schema migration files (NNNN_name.up.sql / .down.sql).
func SQL() fs.FS {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Seeds returns the idempotent seed files.
func Seeds() fs.FS {
	sub, err := fs.Sub(files, "seeds")
	if err != nil {
		panic(err)
	}
	return sub
}
