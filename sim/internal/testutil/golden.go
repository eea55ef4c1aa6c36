// Package testutil provides shared test infrastructure for the dispatch
// simulator: the golden scenario dataset and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenSite is a site of a golden scenario.
type GoldenSite struct {
	ID   int64   `json:"id"`
	Rate float64 `json:"rate"`
}

// GoldenRoad is a road of a golden scenario.
type GoldenRoad struct {
	From       int64   `json:"from"`
	To         int64   `json:"to"`
	TravelTime float64 `json:"travel_time"`
}

// GoldenTestCase is one scenario whose ranking is known analytically:
// exactly one site produces accidents, so the unit based there never
// drives and its average equals site_delay, while every other unit pays
// at least one positive-length leg.
type GoldenTestCase struct {
	Name      string       `json:"name"`
	Sites     []GoldenSite `json:"sites"`
	Roads     []GoldenRoad `json:"roads"`
	SiteDelay float64      `json:"site_delay"`
	DT        float64      `json:"dt"`
	RunTime   float64      `json:"run_time"`
	RunNumber int          `json:"run_number"`
	Seed      int64        `json:"seed"`
	Expected  GoldenResult `json:"expected"`
}

// GoldenResult is the expected outcome of every trial of a golden case.
type GoldenResult struct {
	BestSite     int64   `json:"best_site"`
	BestAverage  float64 `json:"best_average"`
	MinProcessed int     `json:"min_processed"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
