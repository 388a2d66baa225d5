//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"nexus-store/internal/catalogfeed"

	"github.com/shopspring/decimal"
)

// generateSampleCatalog writes two gzipped JSON-lines product feeds.
// The second feed repeats KIT-001 with a new price and stock level, so
// importing both in order exercises the update path.
func main() {
	dataDir := "data/feeds"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	inactive := false
	feeds := map[string][]catalogfeed.Entry{
		"catalog-base.jsonl.gz": {
			{SKU: "KIT-001", Name: "Enamel Mug", Price: decimal.RequireFromString("12.50"), StockQuantity: 40, Category: "Kitchen & Dining"},
			{SKU: "KIT-002", Name: "Steel Kettle", Price: decimal.RequireFromString("39.00"), StockQuantity: 12, IsFeatured: true, Category: "Kitchen & Dining"},
			{SKU: "GDN-001", Name: "Hand Trowel", Price: decimal.RequireFromString("7.25"), StockQuantity: 60, Category: "Garden"},
			{SKU: "LGT-001", Name: "Desk Lamp", Description: "Adjustable arm, warm white LED.", Price: decimal.RequireFromString("45.00"), StockQuantity: 8, IsFeatured: true, Category: "Lighting"},
			{SKU: "LGT-002", Name: "Old Bulb", Price: decimal.RequireFromString("1.20"), StockQuantity: 0, IsActive: &inactive, Category: "Lighting"},
		},
		"catalog-delta.jsonl.gz": {
			{SKU: "KIT-001", Name: "Enamel Mug", Price: decimal.RequireFromString("11.00"), StockQuantity: 75, Category: "Kitchen & Dining"},
			{SKU: "CAF-001", Name: "Crêpe Pan", Price: decimal.RequireFromString("25.00"), StockQuantity: 3, Category: "Café & Bar"},
		},
	}

	for filename, entries := range feeds {
		filePath := filepath.Join(dataDir, filename)

		if err := createFeedFile(filePath, entries); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(entries))
	}

	fmt.Println("\nImport them at startup with:")
	fmt.Printf("  CATALOG_FEED_FILES=%s,%s\n",
		filepath.Join(dataDir, "catalog-base.jsonl.gz"),
		filepath.Join(dataDir, "catalog-delta.jsonl.gz"))
}

func createFeedFile(filePath string, entries []catalogfeed.Entry) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", e.SKU, err)
		}
	}

	return nil
}
