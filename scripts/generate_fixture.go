package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lariat-data/lariat-go/core/runtime/mockapi"
)

// Generates a mock-server fixture with the built-in catalog and random
// metric history, for use with `lariat mock-server --fixture`.

var dimensionPool = map[string][]string{
	"country": {"US", "UK", "DE", "FR", "BR"},
	"channel": {"web", "app", "partner"},
}

func main() {
	var (
		out      string
		points   int
		interval time.Duration
		seed     int64
	)
	flag.StringVar(&out, "out", "", "Output file (stdout when empty)")
	flag.IntVar(&points, "points", 48, "Evaluations per indicator")
	flag.DurationVar(&interval, "interval", time.Hour, "Time between evaluations")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	fixture := mockapi.DefaultFixture()
	rng := rand.New(rand.NewSource(seed))
	end := time.Now().UTC().Truncate(interval)
	start := end.Add(-time.Duration(points-1) * interval)

	fixture.Records = make(map[int64][]mockapi.RecordFixture, len(fixture.Indicators))
	for _, ind := range fixture.Indicators {
		var records []mockapi.RecordFixture
		for i := 0; i < points; i++ {
			ts := start.Add(time.Duration(i) * interval).UnixMilli()
			for _, dims := range combinations(ind.GroupFields) {
				records = append(records, mockapi.RecordFixture{
					EvaluationTime: ts,
					Value:          float64(rng.Intn(50000)) / 100.0,
					Dimensions:     dims,
				})
			}
		}
		fixture.Records[ind.IndicatorID] = records
	}

	var w io.Writer = os.Stdout
	if out != "" {
		file, err := os.Create(out)
		if err != nil {
			panic(fmt.Errorf("create failed: %w", err))
		}
		defer file.Close()
		w = file
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fixture); err != nil {
		panic(fmt.Errorf("encode failed: %w", err))
	}
	if err := enc.Close(); err != nil {
		panic(fmt.Errorf("encode failed: %w", err))
	}

	if out != "" {
		fmt.Fprintf(os.Stderr, "wrote %d indicators x %d evaluations to %s\n", len(fixture.Indicators), points, out)
	}
}

// combinations returns one dimension map per value combination of fields.
// Ungrouped indicators get a single nil entry.
func combinations(fields []string) []map[string]any {
	out := []map[string]any{nil}
	for _, field := range fields {
		values, ok := dimensionPool[field]
		if !ok {
			values = []string{"unknown"}
		}
		next := make([]map[string]any, 0, len(out)*len(values))
		for _, base := range out {
			for _, v := range values {
				m := make(map[string]any, len(base)+1)
				for k, bv := range base {
					m[k] = bv
				}
				m[field] = v
				next = append(next, m)
			}
		}
		out = next
	}
	return out
}
