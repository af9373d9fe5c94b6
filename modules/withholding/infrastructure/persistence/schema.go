package persistence

import (
	"embed"
	"io/fs"
)

// Migrations holds the goose migrations for the tables this module owns.
// onboarding.records is owned by the onboarding service and is only read here.
//
//go:embed migrations/*.sql
var migrations embed.FS

func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
