// Command genmock generates synthetic incident CSV files for testing the
// aggregation pipeline. Points are jittered around real US city centroids so
// heatmaps of the output look plausible, and a configurable fraction of rows
// is deliberately malformed to exercise the validity filter.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/incidents.csv -rows 5000
//	go run ./cmd/genmock -out data/mock/incidents_by_year.csv -year-only
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// city is a generation centroid. Weight skews how many incidents land there.
type city struct {
	name   string
	state  string
	lat    float64
	lon    float64
	weight int
}

var cities = []city{
	{"New York", "NY", 40.7128, -74.0060, 10},
	{"Los Angeles", "CA", 34.0522, -118.2437, 8},
	{"Chicago", "IL", 41.8781, -87.6298, 6},
	{"Houston", "TX", 29.7604, -95.3698, 5},
	{"Phoenix", "AZ", 33.4484, -112.0740, 4},
	{"Philadelphia", "PA", 39.9526, -75.1652, 4},
	{"Dallas", "TX", 32.7767, -96.7970, 3},
	{"Miami", "FL", 25.7617, -80.1918, 3},
	{"Atlanta", "GA", 33.7490, -84.3880, 3},
	{"Seattle", "WA", 47.6062, -122.3321, 2},
	{"Denver", "CO", 39.7392, -104.9903, 2},
	{"Boston", "MA", 42.3601, -71.0589, 2},
	// Outside the contiguous US, so -conus-only has something to drop.
	{"Anchorage", "AK", 61.2181, -149.9003, 1},
	{"Honolulu", "HI", 21.3099, -157.8581, 1},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path (required)")
	rows := flag.Int("rows", 1000, "number of data rows to generate")
	seed := flag.Int64("seed", 1, "random seed, same seed gives same file")
	startYear := flag.Int("start-year", 1990, "earliest incident year")
	endYear := flag.Int("end-year", 2020, "latest incident year")
	yearOnly := flag.Bool("year-only", false, "emit a bare year column instead of full dates")
	dirty := flag.Float64("dirty", 0.02, "fraction of rows with invalid fields")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *rows < 1 {
		return fmt.Errorf("invalid -rows %d, want at least 1", *rows)
	}
	if *endYear < *startYear {
		return fmt.Errorf("invalid year range %d..%d", *startYear, *endYear)
	}
	if *dirty < 0 || *dirty > 1 {
		return fmt.Errorf("invalid -dirty %v, want 0..1", *dirty)
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	dateCol := "date"
	if *yearOnly {
		dateCol = "year"
	}
	if err := w.Write([]string{"id", dateCol, "lat", "lon", "city", "state"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	wheel := weightWheel()
	cityRows := make(map[string]int, len(cities))
	dirtyRows := 0

	for i := 0; i < *rows; i++ {
		c := cities[wheel[rng.Intn(len(wheel))]]
		cityRows[c.name]++

		lat := c.lat + rng.NormFloat64()*0.15
		lon := c.lon + rng.NormFloat64()*0.15
		year := *startYear + rng.Intn(*endYear-*startYear+1)

		row := []string{
			strconv.Itoa(i + 1),
			dateValue(rng, year, *yearOnly),
			strconv.FormatFloat(lat, 'f', 4, 64),
			strconv.FormatFloat(lon, 'f', 4, 64),
			c.name,
			c.state,
		}
		if rng.Float64() < *dirty {
			corrupt(rng, row)
			dirtyRows++
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	log.Printf("wrote %s: %d rows (%d dirty), years %d..%d",
		*out, *rows, dirtyRows, *startYear, *endYear)
	printStats(cityRows)
	return nil
}

// weightWheel expands city weights into an index wheel so a uniform pick
// lands on each city proportionally.
func weightWheel() []int {
	var wheel []int
	for i, c := range cities {
		for n := 0; n < c.weight; n++ {
			wheel = append(wheel, i)
		}
	}
	return wheel
}

func dateValue(rng *rand.Rand, year int, yearOnly bool) string {
	if yearOnly {
		return strconv.Itoa(year)
	}
	month := time.Month(1 + rng.Intn(12))
	day := 1 + rng.Intn(28)
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// corrupt makes one field of row invalid so the loader excludes it.
func corrupt(rng *rand.Rand, row []string) {
	switch rng.Intn(3) {
	case 0:
		row[1] = "unknown"
	case 1:
		row[2] = ""
	case 2:
		row[3] = "999.0"
	}
}

type cityCount struct {
	name  string
	count int
}

func printStats(cityRows map[string]int) {
	counts := make([]cityCount, 0, len(cityRows))
	for name, n := range cityRows {
		counts = append(counts, cityCount{name, n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	fmt.Println("\n=== Rows per city ===")
	for _, c := range counts {
		fmt.Printf("%s: %d\n", c.name, c.count)
	}
}
