package dto

import (
	"github.com/lariat-data/lariat-go/core/domain"
)

// MetricsResponse is the body of /query-metrics
type MetricsResponse struct {
	Records []domain.MetricRecord `json:"records"`
}

// QueryMetricsParams is the decoded form of a /query-metrics request
type QueryMetricsParams struct {
	IndicatorID int64    `json:"indicator_id" validate:"required,gt=0"`
	FromTS      int64    `json:"from_ts" validate:"min=0"`
	ToTS        int64    `json:"to_ts" validate:"min=0,gtefield=FromTS"`
	GroupBy     []string `json:"group_by" validate:"dive,required"`
	Aggregate   string   `json:"aggregate" validate:"omitempty,oneof=sum avg median p75 p25 max min count distinct"`
	Filter      string   `json:"filter"`
}
