package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/agroshop-backend/config"
	"github.com/ikkim/agroshop-backend/internal/catalog"
	"github.com/ikkim/agroshop-backend/internal/db"
)

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	dryRun := flag.Bool("dry-run", false, "validate the workbook without writing")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-yes] [-dry-run] <catalog.xlsx>")
	}
	filePath := flag.Arg(0)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	entries, err := catalog.ReadFile(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX: ", err)
	}

	tierCount := 0
	for _, e := range entries {
		tierCount += len(e.Tiers)
	}
	fmt.Printf("Products to import: %d (pricing tiers: %d)\n", len(entries), tierCount)

	if *dryRun {
		fmt.Println("Dry run, nothing written.")
		return
	}

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	created, updated, err := catalog.Import(db.GetDB(), entries)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Import failed, nothing was written:", err)
		os.Exit(1)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Created: %d, updated: %d\n", created, updated)
}
