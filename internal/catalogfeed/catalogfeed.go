// Package catalogfeed imports gzipped JSON-lines product feeds into the catalog.
package catalogfeed

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Entry is one product line of a feed.
type Entry struct {
	SKU           string          `json:"sku" validate:"required,max=50"`
	Name          string          `json:"name" validate:"required,max=15"`
	Description   string          `json:"description" validate:"max=5000"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	IsFeatured    bool            `json:"is_featured"`
	IsActive      *bool           `json:"is_active"`
	Category      string          `json:"category" validate:"required,max=100"`
}

// Active reports whether the product should be listed. Entries without the
// flag are active.
func (e Entry) Active() bool {
	return e.IsActive == nil || *e.IsActive
}

// Loader reads one feed.
type Loader interface {
	// Load reads the gzipped feed at path and returns its entries in order.
	Load(ctx context.Context, path string) ([]Entry, error)
}

// LineError reports a malformed feed line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ErrNegativePrice is reported for entries priced below zero.
var ErrNegativePrice = errors.New("price cannot be negative")

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode reads gzipped JSON lines from r. Blank lines are skipped; the first
// malformed line aborts the feed.
func decode(ctx context.Context, r io.Reader) ([]Entry, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var entries []Entry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, &LineError{Line: lineNo, Err: err}
		}
		e.SKU = strings.TrimSpace(e.SKU)
		e.Name = strings.TrimSpace(e.Name)
		e.Category = strings.TrimSpace(e.Category)
		if err := validate.Struct(e); err != nil {
			return nil, &LineError{Line: lineNo, Err: err}
		}
		if e.Price.IsNegative() {
			return nil, &LineError{Line: lineNo, Err: ErrNegativePrice}
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading feed: %w", err)
	}

	return entries, nil
}
