package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/pb33f/libopenapi"

	transporthttp "github.com/lariat-data/lariat-go/core/infrastructure/transport/http"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

var openAPIDocument = sync.OnceValues(func() ([]byte, error) {
	return GenerateOpenAPIDocument(BasePath)
})

// OpenAPI handles GET /openapi.json
func (h *Handler) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	doc, err := openAPIDocument()
	if err != nil {
		h.WriteError(w, errors.WrapError(errors.ErrCodeInternalError, "failed to build OpenAPI document", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// GenerateOpenAPIDocument describes the mocked public API as OpenAPI 3.0 and
// checks the result with libopenapi before returning it.
func GenerateOpenAPIDocument(serverURL string) ([]byte, error) {
	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "Lariat Public API (mock)",
			"version":     "1.0.0",
			"description": "Indicators, datasets and metric evaluations served from a local fixture.",
		},
		"servers": []map[string]any{{"url": serverURL}},
		"security": []map[string]any{
			{"apiKey": []string{}, "applicationKey": []string{}},
		},
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"apiKey":         headerScheme(transporthttp.HeaderAPIKey),
				"applicationKey": headerScheme(transporthttp.HeaderApplicationKey),
			},
			"schemas": openAPISchemas(),
		},
		"paths": map[string]any{
			"/indicators": getOperation("listIndicators", "List indicators",
				[]map[string]any{
					queryParam("dataset_id", arrayOf(integerSchema()), false, "Only indicators of these datasets"),
					queryParam("tags", arrayOf(stringSchema()), false, "Only indicators with one of these tags"),
					queryParam("fields", arrayOf(stringSchema()), false, "Only indicators grouped by one of these fields"),
				},
				objectWith("indicators", arrayOf(ref("Indicator")))),
			"/indicator": getOperation("getIndicator", "Get one indicator",
				[]map[string]any{queryParam("indicator_id", integerSchema(), true, "Indicator ID")},
				objectWith("indicator", ref("Indicator"))),
			"/indicators/{id}/dimensions": getOperation("listDimensionValues", "Distinct values of an indicator's dimensions",
				[]map[string]any{
					{"name": "id", "in": "path", "required": true, "schema": integerSchema()},
					queryParam("dimensions", arrayOf(stringSchema()), false, "Restrict to these dimensions"),
				},
				objectWith("filters", arrayOf(ref("DimensionValues")))),
			"/datasets": getOperation("listDatasets", "List computed datasets",
				[]map[string]any{
					queryParam("name", stringSchema(), false, "Dataset name"),
					queryParam("source_id", stringSchema(), false, "Source ID"),
				},
				objectWith("computed_datasets", arrayOf(ref("Dataset")))),
			"/raw-datasets": getOperation("listRawDatasets", "Raw datasets behind computed datasets",
				[]map[string]any{queryParam("dataset_id", arrayOf(integerSchema()), false, "Computed dataset IDs")},
				objectWith("raw_datasets", arrayOf(ref("RawDataset")))),
			"/query-metrics": getOperation("queryMetrics", "Metric evaluations of an indicator",
				[]map[string]any{
					queryParam("indicator_id", integerSchema(), true, "Indicator ID"),
					queryParam("from_ts", integerSchema(), true, "Range start, epoch milliseconds"),
					queryParam("to_ts", integerSchema(), true, "Range end, epoch milliseconds, inclusive"),
					queryParam("group_by", arrayOf(stringSchema()), false, "Dimensions to keep on each record"),
					queryParam("aggregate", map[string]any{
						"type": "string",
						"enum": []string{"sum", "avg", "median", "p75", "p25", "max", "min", "count", "distinct"},
					}, false, "Server-side aggregate"),
					queryParam("filter", stringSchema(), false, "JSON filter tree"),
				},
				objectWith("records", arrayOf(ref("MetricRecord")))),
		},
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}

	document, err := libopenapi.NewDocument(specJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	if _, err := document.BuildV3Model(); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return specJSON, nil
}

func openAPISchemas() map[string]any {
	stringList := arrayOf(stringSchema())
	return map[string]any{
		"Indicator": objectSchema(map[string]any{
			"indicator_id":          integerSchema(),
			"computed_dataset_id":   integerSchema(),
			"computed_dataset_name": stringSchema(),
			"calculation":           stringSchema(),
			"filters":               stringSchema(),
			"group_fields":          stringList,
			"aggregations":          stringList,
			"name":                  stringSchema(),
			"tags":                  stringList,
		}),
		"Dataset": objectSchema(map[string]any{
			"data_source":  stringSchema(),
			"source_id":    stringSchema(),
			"dataset_name": stringSchema(),
			"id":           integerSchema(),
			"query":        stringSchema(),
			"schema":       map[string]any{"type": "object", "additionalProperties": true},
		}),
		"RawDataset": objectSchema(map[string]any{
			"source_id":   stringSchema(),
			"data_source": stringSchema(),
			"name":        stringSchema(),
			"schema":      map[string]any{"type": "object", "additionalProperties": true},
		}),
		"DimensionValues": objectSchema(map[string]any{
			"key":    stringSchema(),
			"values": stringList,
		}),
		"MetricRecord": objectSchema(map[string]any{
			"evaluation_time": integerSchema(),
			"value":           map[string]any{"type": "number"},
			"dimensions":      map[string]any{"type": "object", "additionalProperties": true},
		}),
		"Error": objectSchema(map[string]any{
			"detail": stringSchema(),
		}),
	}
}

func getOperation(operationID, summary string, params []map[string]any, response map[string]any) map[string]any {
	return map[string]any{
		"get": map[string]any{
			"operationId": operationID,
			"summary":     summary,
			"parameters":  params,
			"responses": map[string]any{
				"200": jsonResponse("Success", response),
				"400": jsonResponse("Invalid parameters", ref("Error")),
				"401": jsonResponse("Missing credentials", ref("Error")),
				"404": jsonResponse("Not found", ref("Error")),
			},
		},
	}
}

func jsonResponse(description string, schema map[string]any) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{"schema": schema},
		},
	}
}

func queryParam(name string, schema map[string]any, required bool, description string) map[string]any {
	p := map[string]any{
		"name":        name,
		"in":          "query",
		"required":    required,
		"description": description,
		"schema":      schema,
	}
	if schema["type"] == "array" {
		p["explode"] = true
	}
	return p
}

func headerScheme(header string) map[string]any {
	return map[string]any{"type": "apiKey", "in": "header", "name": header}
}

func objectWith(key string, schema map[string]any) map[string]any {
	return objectSchema(map[string]any{key: schema})
}

func objectSchema(properties map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": properties}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func stringSchema() map[string]any  { return map[string]any{"type": "string"} }
func integerSchema() map[string]any { return map[string]any{"type": "integer", "format": "int64"} }
