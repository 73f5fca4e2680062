package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lariat-data/lariat-go/core/domain"
)

func TestBuildIndicatorQuery(t *testing.T) {
	tests := []struct {
		name        string
		filters     string
		groupFields []string
		want        string
	}{
		{"bare", "", nil, "SELECT count(*) AS value FROM orders"},
		{"where", "status = 'ok'", nil, "SELECT count(*) AS value FROM orders WHERE status = 'ok'"},
		{"group by", "", []string{"country", "device"}, "SELECT count(*) AS value FROM orders GROUP BY country, device"},
		{"both", "a > 1", []string{"country"}, "SELECT count(*) AS value FROM orders WHERE a > 1 GROUP BY country"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.BuildIndicatorQuery("count(*)", "orders", tt.filters, tt.groupFields))
		})
	}
}

func TestDatasetSchemaFields(t *testing.T) {
	d := &domain.Dataset{
		ID: 9,
		Schema: map[string]any{
			"id":   "int",
			"user": map[string]any{"name": "string", "address": map[string]any{"city": "string"}},
		},
	}

	assert.Equal(t, []domain.Field{
		{DatasetID: 9, Name: "id"},
		{DatasetID: 9, Name: "user.address.city"},
		{DatasetID: 9, Name: "user.name"},
	}, d.SchemaFields())
}

func TestForDataset(t *testing.T) {
	f := domain.ForDataset(&domain.Dataset{ID: 4})
	assert.Equal(t, []int64{4}, f.DatasetIDs)
	assert.Empty(t, f.Tags)
}
