// Package migrations embeds the SQL migration scripts for the global
// shard and the per-region shard schema, so the binary carries its own
// schema and never depends on a migrations directory being present on
// the deploy target's filesystem.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed global/*.sql
var global embed.FS

//go:embed region/*.sql
var region embed.FS

// GlobalFS returns the global-shard migration scripts rooted at the
// directory itself, ready to hand to database.NewMigrator.
func GlobalFS() fs.FS {
	sub, err := fs.Sub(global, "global")
	if err != nil {
		panic(err) // unreachable: "global" is embedded at build time
	}
	return sub
}

// RegionFS returns the region-shard migration scripts rooted at the
// directory itself, ready to hand to database.NewMigrator.
func RegionFS() fs.FS {
	sub, err := fs.Sub(region, "region")
	if err != nil {
		panic(err) // unreachable: "region" is embedded at build time
	}
	return sub
}
