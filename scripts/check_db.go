//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"nexus-store/internal/config"
	"nexus-store/internal/database"
)

// Reports the configured database, its applied schema version and row
// counts for the main tables. Reads the same environment as the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database.ConnectionString(), database.PoolOptions{MaxConns: 2})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	var version int64
	var dirty bool
	if err := pool.QueryRow(ctx, "SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		fmt.Printf("Schema not migrated yet (%v)\n", err)
		return
	}
	fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)

	fmt.Println("\nRow counts:")
	for _, table := range []string{"categories", "products", "carts", "orders", "payments", "reviews"} {
		var n int64
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			fmt.Fprintf(os.Stderr, "Count on %s failed: %v\n", table, err)
			os.Exit(1)
		}
		fmt.Printf("  - %-10s %d\n", table, n)
	}
}
