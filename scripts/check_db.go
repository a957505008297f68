//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"

	"bookstore/internal/config"

	"github.com/jackc/pgx/v5"
)

// Connects with the application's configuration and prints row counts per table.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		log.Fatalf("QueryRow failed: %v", err)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	rows, err := conn.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	if len(tables) == 0 {
		fmt.Println("\nNo tables yet, start the API once to apply the schema.")
		return
	}

	fmt.Println("\nTables:")
	for _, table := range tables {
		var count int
		if err := conn.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{table}.Sanitize())).Scan(&count); err != nil {
			log.Fatalf("Count of %s failed: %v", table, err)
		}
		fmt.Printf("  - %-12s %d rows\n", table, count)
	}
}
