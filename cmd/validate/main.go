// Command validate checks a produced aggregation artifact for integrity: the
// meta block is well formed, every feature belongs to a declared window and
// carries the right cell key for the grid, and the feature order matches the
// deterministic output contract. With -csv it also cross-checks the artifact
// against the source table it was aggregated from.
//
// Usage:
//
//	go run ./cmd/validate -artifact dist/aggregates.json
//	go run ./cmd/validate -artifact dist/aggregates.json -csv data/incidents.csv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/incident-heatmap-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
	"github.com/couchcryptid/incident-heatmap-etl/internal/spatial"
)

// coordTolerance absorbs the 6-decimal centroid rounding when containment
// checks compare a centroid against its bin edges.
const coordTolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	artifactPath := flag.String("artifact", "", "path to the aggregation artifact JSON")
	csvPath := flag.String("csv", "", "optional source CSV to cross-check against")
	flag.Parse()

	if *artifactPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*artifactPath, *csvPath); code != 0 {
		os.Exit(code)
	}
}

func run(artifactPath, csvPath string) int {
	fmt.Println("=== Heatmap Artifact Validation ===")
	fmt.Println()

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read artifact: %v\n", err)
		return 1
	}
	var artifact domain.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode artifact: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateMeta(&artifact),
		validateFeatures(&artifact),
	}
	if csvPath != "" {
		table, err := csvfile.Load(csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load source csv: %v\n", err)
			return 1
		}
		phases = append(phases, validateSource(&artifact, table))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Artifact: %d bytes, %d windows, %d features, %d points\n",
		len(data), len(artifact.Meta.Windows), len(artifact.Features), totalPoints(&artifact))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func totalPoints(a *domain.Artifact) int {
	n := 0
	for _, f := range a.Features {
		n += f.Count
	}
	return n
}

// ── Phase 1: Meta Integrity ──
// The meta block declares a known grid, a sane resolution and an ordered,
// contiguous window list.

func validateMeta(a *domain.Artifact) *phase {
	p := &phase{name: "Phase 1: Meta Integrity"}

	switch a.Meta.Grid {
	case domain.GridH3:
		res, ok := a.Meta.Resolution.(float64)
		if !ok || res != math.Trunc(res) || res < 0 || res > 15 {
			p.errorf("h3 resolution %v is not an integer in 0..15", a.Meta.Resolution)
		}
	case domain.GridBin:
		res, ok := a.Meta.Resolution.(float64)
		if !ok || res <= 0 {
			p.errorf("bin resolution %v is not a positive size in degrees", a.Meta.Resolution)
		}
	default:
		p.errorf("unknown grid %q", a.Meta.Grid)
	}

	if len(a.Meta.Windows) == 0 {
		p.errorf("windows list is empty")
	}
	for i, w := range a.Meta.Windows {
		if w.Start > w.End {
			p.errorf("window %d: start %d after end %d", i, w.Start, w.End)
		}
		if i > 0 && w.Start != a.Meta.Windows[i-1].End+1 {
			p.errorf("window %d: starts at %d, previous window ended at %d",
				i, w.Start, a.Meta.Windows[i-1].End)
		}
	}

	if a.Features == nil {
		p.errorf("features is missing or null, want at least []")
	}
	return p
}

// ── Phase 2: Feature Integrity ──
// Every feature sits in a declared window, counts at least one incident,
// carries the cell key matching the grid, and appears in the deterministic
// window-then-cell order.

func validateFeatures(a *domain.Artifact) *phase {
	p := &phase{name: "Phase 2: Feature Integrity"}

	declared := make(map[[2]int]bool, len(a.Meta.Windows))
	for _, w := range a.Meta.Windows {
		declared[w.Pair()] = true
	}

	for i, f := range a.Features {
		if !declared[f.Window] {
			p.errorf("feature %d: window %v not declared in meta", i, f.Window)
		}
		if f.Count < 1 {
			p.errorf("feature %d: count %d, want at least 1", i, f.Count)
		}
		if !domain.ValidCoords(f.Lat, f.Lon) {
			p.errorf("feature %d: centroid %.6f,%.6f out of range", i, f.Lat, f.Lon)
		}
		checkCellKey(p, i, &f, a.Meta.Grid)
	}

	checkFeatureOrder(p, a)
	checkBinContainment(p, a)
	checkHexCells(p, a)
	return p
}

func checkCellKey(p *phase, i int, f *domain.Feature, grid domain.GridType) {
	switch grid {
	case domain.GridH3:
		if f.Cell == "" {
			p.errorf("feature %d: h3 grid but cell key is empty", i)
		}
		if f.BinID != "" {
			p.errorf("feature %d: h3 grid but bin_id %q is set", i, f.BinID)
		}
	case domain.GridBin:
		if f.BinID == "" {
			p.errorf("feature %d: bin grid but bin_id is empty", i)
		}
		if f.Cell != "" {
			p.errorf("feature %d: bin grid but cell %q is set", i, f.Cell)
		}
	}
}

// checkFeatureOrder verifies the output contract: features grouped by window
// in meta order, cell keys strictly ascending inside each group.
func checkFeatureOrder(p *phase, a *domain.Artifact) {
	windowRank := make(map[[2]int]int, len(a.Meta.Windows))
	for i, w := range a.Meta.Windows {
		windowRank[w.Pair()] = i
	}

	lastRank := -1
	lastID := ""
	for i, f := range a.Features {
		rank, ok := windowRank[f.Window]
		if !ok {
			continue // reported by the declared-window check
		}
		switch {
		case rank < lastRank:
			p.errorf("feature %d: window %v appears after a later window", i, f.Window)
		case rank > lastRank:
			lastRank = rank
			lastID = f.CellID()
		default:
			if f.CellID() <= lastID {
				p.errorf("feature %d: cell %q out of order after %q", i, f.CellID(), lastID)
			}
			lastID = f.CellID()
		}
	}
}

// checkBinContainment verifies each bin-grid centroid lies inside the cell
// named by its bin_id.
func checkBinContainment(p *phase, a *domain.Artifact) {
	if a.Meta.Grid != domain.GridBin {
		return
	}
	size, ok := a.Meta.Resolution.(float64)
	if !ok || size <= 0 {
		return // reported by meta integrity
	}

	for i, f := range a.Features {
		parts := strings.SplitN(f.BinID, "_", 2)
		if len(parts) != 2 {
			p.errorf("feature %d: bin_id %q is not lat_lon", i, f.BinID)
			continue
		}
		binLat, latErr := strconv.ParseFloat(parts[0], 64)
		binLon, lonErr := strconv.ParseFloat(parts[1], 64)
		if latErr != nil || lonErr != nil {
			p.errorf("feature %d: bin_id %q is not numeric", i, f.BinID)
			continue
		}
		if f.Lat < binLat-coordTolerance || f.Lat > binLat+size+coordTolerance {
			p.errorf("feature %d: centroid lat %.6f outside bin %q", i, f.Lat, f.BinID)
		}
		if f.Lon < binLon-coordTolerance || f.Lon > binLon+size+coordTolerance {
			p.errorf("feature %d: centroid lon %.6f outside bin %q", i, f.Lon, f.BinID)
		}
	}
}

// checkHexCells recomputes each h3 cell from its centroid. Centroids sit
// inside their cell, but the 6-decimal rounding can push one across an edge,
// so isolated mismatches are tolerated and only a systematic drift fails.
func checkHexCells(p *phase, a *domain.Artifact) {
	if a.Meta.Grid != domain.GridH3 || len(a.Features) == 0 {
		return
	}
	res, ok := a.Meta.Resolution.(float64)
	if !ok || res != math.Trunc(res) {
		return // reported by meta integrity
	}

	hex, err := spatial.NewHexIndexer(int(res))
	if err != nil {
		return
	}
	if err := hex.Probe(); err != nil {
		fmt.Printf("  Note: h3 indexing unavailable, skipping cell recomputation: %v\n", err)
		return
	}

	mismatches := 0
	for _, f := range a.Features {
		if hex.CellFor(f.Lat, f.Lon) != f.Cell {
			mismatches++
		}
	}
	if limit := max(1, len(a.Features)/100); mismatches > limit {
		p.errorf("%d of %d cells do not contain their centroid", mismatches, len(a.Features))
	}
}

// ── Phase 3: Source Cross-Check ──
// The artifact cannot count more points than the source has valid rows, and
// its windows must span a sub-range of the source years ending at the last
// observed year.

func validateSource(a *domain.Artifact, table *csvfile.Table) *phase {
	p := &phase{name: "Phase 3: Source Cross-Check"}

	points := totalPoints(a)
	if valid := len(table.Records); points > valid {
		p.errorf("artifact counts %d points, source has only %d valid rows", points, valid)
	}

	minYear, maxYear, err := domain.YearRange(table.Records)
	if err != nil {
		p.errorf("source has no valid rows to derive years from: %v", err)
		return p
	}
	if len(a.Meta.Windows) == 0 {
		return p
	}

	first := a.Meta.Windows[0]
	last := a.Meta.Windows[len(a.Meta.Windows)-1]
	if first.Start < minYear {
		p.errorf("first window starts %d, before the source's earliest year %d", first.Start, minYear)
	}
	if last.End != maxYear {
		p.errorf("last window ends %d, source's latest year is %d", last.End, maxYear)
	}
	return p
}
