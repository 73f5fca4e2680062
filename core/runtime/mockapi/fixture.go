package mockapi

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

//go:embed fixture.yaml
var defaultFixture []byte

// RecordFixture is one stored metric evaluation
type RecordFixture struct {
	EvaluationTime int64          `yaml:"evaluation_time"`
	Value          float64        `yaml:"value"`
	Dimensions     map[string]any `yaml:"dimensions"`
}

// Fixture is the data the mock API serves
type Fixture struct {
	Indicators  []dto.IndicatorDTO  `yaml:"indicators"`
	Datasets    []dto.DatasetDTO    `yaml:"datasets"`
	RawDatasets []dto.RawDatasetDTO `yaml:"raw_datasets"`
	// Records holds metric evaluations keyed by indicator ID
	Records map[int64][]RecordFixture `yaml:"records"`
}

// DefaultFixture returns the built-in sample data
func DefaultFixture() *Fixture {
	f, err := ParseFixture(defaultFixture)
	if err != nil {
		panic(fmt.Sprintf("mockapi: invalid built-in fixture: %v", err))
	}
	return f
}

// LoadFixture reads a fixture from a YAML file
func LoadFixture(path string) (*Fixture, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(errors.ErrCodeIOError, fmt.Sprintf("failed to read fixture %s", path), err)
	}
	return ParseFixture(content)
}

// ParseFixture parses fixture YAML. Every record must belong to a known
// indicator.
func ParseFixture(content []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, errors.WrapError(errors.ErrCodeConfigError, "failed to parse fixture", err)
	}
	for id := range f.Records {
		if f.indicator(id) == nil {
			return nil, errors.NewAppError(errors.ErrCodeConfigError, fmt.Sprintf("records reference unknown indicator %d", id), nil)
		}
	}
	for id, records := range f.Records {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].EvaluationTime < records[j].EvaluationTime
		})
		f.Records[id] = records
	}
	return &f, nil
}

func (f *Fixture) indicator(id int64) *dto.IndicatorDTO {
	for i := range f.Indicators {
		if f.Indicators[i].IndicatorID == id {
			return &f.Indicators[i]
		}
	}
	return nil
}

// dimensionValues collects the distinct values of each dimension across an
// indicator's records, in first-seen order
func (f *Fixture) dimensionValues(id int64, only []string) []dto.DimensionFilterDTO {
	ind := f.indicator(id)
	keys := only
	if len(keys) == 0 {
		keys = ind.GroupFields
	}

	out := make([]dto.DimensionFilterDTO, 0, len(keys))
	for _, key := range keys {
		seen := map[string]struct{}{}
		values := []any{}
		for _, rec := range f.Records[id] {
			v, ok := rec.Dimensions[key]
			if !ok {
				continue
			}
			s := domain.FormatValue(v)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			values = append(values, v)
		}
		out = append(out, dto.DimensionFilterDTO{Key: key, Values: values})
	}
	return out
}
