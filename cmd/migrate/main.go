package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/graeme-hill/simpc-go/lib"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("migrate: ")

	dir := flag.String("dir", "./migrations", "directory of NAME.up.sql / NAME.down.sql files")
	db := flag.String("db", os.Getenv("SIMPC_DATABASE_URL"), "postgres connection string (default $SIMPC_DATABASE_URL)")
	flag.Parse()

	if *db == "" {
		log.Fatal("no database, pass -db or set SIMPC_DATABASE_URL")
	}

	ctx := context.Background()
	applied, err := lib.RunMigrations(ctx, *dir, *db)
	for _, name := range applied {
		log.Printf("applied %s", name)
	}
	if err != nil {
		log.Fatal(err)
	}
	if len(applied) == 0 {
		log.Print("nothing to apply")
	}
}
