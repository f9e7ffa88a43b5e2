// Command yearsplit splits an incident CSV into one file per event year,
// preserving the original header and row text. Rows the validity filter
// drops have no year to split on and are skipped.
//
// Usage:
//
//	go run ./cmd/yearsplit -csv data/incidents.csv -out-dir dist/by-year
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/incident-heatmap-etl/internal/adapter/csvfile"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "input CSV of incident points (required)")
	outDir := flag.String("out-dir", "dist/by-year", "directory for the per-year CSV files")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -csv")
	}

	table, err := csvfile.Load(*csvPath)
	if err != nil {
		return err
	}

	byYear := make(map[int][]int)
	skipped := 0
	for i, year := range table.RowYear {
		if year == 0 {
			skipped++
			continue
		}
		byYear[year] = append(byYear[year], i)
	}
	if len(byYear) == 0 {
		return fmt.Errorf("no rows with a usable year in %s", *csvPath)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, year := range years {
		path := filepath.Join(*outDir, fmt.Sprintf("incidents_%d.csv", year))
		if err := writeYear(path, table, byYear[year]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("wrote %s: %d rows", path, len(byYear[year]))
	}

	log.Printf("split %d rows across %d years (%d skipped)",
		len(table.Rows)-skipped, len(years), skipped)
	return nil
}

func writeYear(path string, table *csvfile.Table, rows []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Header); err != nil {
		return err
	}
	for _, i := range rows {
		if err := w.Write(table.Rows[i]); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
