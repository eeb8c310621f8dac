// Command migrate applies the embedded schema migrations to the global
// shard and, optionally, to a named region shard.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/sectorwars2102/gameserver/internal/config"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/migrations"
)

func main() {
	regionDSN := flag.String("region-dsn", "", "PostgreSQL DSN for a region shard (omit to migrate only the global shard)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	globalDB, err := database.Open(ctx, cfg.GlobalDatabaseURL, cfg.DBMaxConnections, cfg.DBIdleTimeout)
	if err != nil {
		log.Fatalf("connect to global shard: %v", err)
	}
	defer globalDB.Close()

	globalMigrator := database.NewMigrator(migrations.GlobalFS())
	if err := globalMigrator.Apply(ctx, globalDB); err != nil {
		log.Fatalf("apply global migrations: %v", err)
	}
	log.Println("global shard migrated")

	dsn := *regionDSN
	if dsn == "" {
		dsn = os.Getenv("REGION_DATABASE_URL")
	}
	if dsn == "" {
		return
	}

	regionDB, err := database.Open(ctx, dsn, cfg.DBMaxConnections, 5*time.Minute)
	if err != nil {
		log.Fatalf("connect to region shard: %v", err)
	}
	defer regionDB.Close()

	regionMigrator := database.NewMigrator(migrations.RegionFS())
	if err := regionMigrator.Apply(ctx, regionDB); err != nil {
		log.Fatalf("apply region migrations: %v", err)
	}
	log.Println("region shard migrated")
}
