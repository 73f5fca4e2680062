package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lariat-data/lariat-go/core/cli/internal"
	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/logger"
)

var (
	queryIndicator int64
	queryFrom      string
	queryTo        string
	queryGroupBy   []string
	queryAggregate string
	queryWhere     []string
	queryAny       bool
	queryArgs      []string
	queryOutput    string
	querySink      string
	queryNoHeader  bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the metric values of an indicator over a time range",
	Example: `  lariat query --indicator 42 --from 2024-03-01 --to now --group-by country
  lariat query --indicator 42 --from -24h --to now --where country:in:US,UK --where value:>=:10
  lariat query --indicator 42 --from -168h --to now --output metrics.csv`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	flags := queryCmd.Flags()
	flags.Int64VarP(&queryIndicator, "indicator", "i", 0, "Indicator ID")
	flags.StringVar(&queryFrom, "from", "", "Start of the range (RFC 3339, YYYY-MM-DD, epoch ms or a duration like -24h)")
	flags.StringVar(&queryTo, "to", "now", "End of the range")
	flags.StringSliceVarP(&queryGroupBy, "group-by", "g", nil, "Dimensions to split results by")
	flags.StringVarP(&queryAggregate, "aggregate", "a", "", "Aggregate across series: "+aggregateNames())
	flags.StringArrayVarP(&queryWhere, "where", "w", nil, "Filter clause field:operator:v1,v2 (repeatable)")
	flags.BoolVar(&queryAny, "any", false, "Match any --where clause instead of all")
	flags.StringArrayVar(&queryArgs, "arg", nil, "Extra query argument key=value passed through verbatim (repeatable)")
	flags.StringVar(&queryOutput, "output", "", "Write results to a .csv or .json file instead of stdout")
	flags.BoolVar(&queryNoHeader, "no-header", false, "Omit the header row from .csv output")
	flags.StringVar(&querySink, "sink", "", "Export results to a sink from the configuration")

	_ = queryCmd.MarkFlagRequired("indicator")
	_ = queryCmd.MarkFlagRequired("from")
}

func runQuery(cmd *cobra.Command, _ []string) error {
	log := logger.New("query")

	q, err := buildQuery(time.Now())
	if err != nil {
		return logger.WithTag("query", err)
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.Query(cmd.Context(), q)
	if err != nil {
		return logger.WithTag("query", err)
	}
	log.Infof("Received %d record(s)", result.Len())

	if querySink != "" {
		if err := c.Export(cmd.Context(), result, querySink); err != nil {
			return logger.WithTag("sinks", err)
		}
		log.Successf("Exported %d record(s) to sink '%s'", result.Len(), querySink)
	}

	switch strings.ToLower(filepath.Ext(queryOutput)) {
	case "":
		if querySink != "" {
			return nil
		}
		return renderTable(cmd.OutOrStdout(), result)
	case ".csv":
		var opts []domain.CSVOption
		if queryNoHeader {
			opts = append(opts, domain.WithoutHeader())
		}
		err = result.ToCSV(queryOutput, opts...)
	case ".json":
		err = result.ToJSON(queryOutput)
	default:
		return logger.WithTag("query", fmt.Errorf("unsupported output file %q: use .csv or .json", queryOutput))
	}
	if err != nil {
		return logger.WithTag("query", err)
	}
	log.Successf("Wrote %d record(s) to %s", result.Len(), queryOutput)
	return nil
}

// buildQuery turns the command flags into a validated request
func buildQuery(now time.Time) (domain.MetricsQuery, error) {
	from, err := internal.ParseTime(queryFrom, now)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	to, err := internal.ParseTime(queryTo, now)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}

	opts := []domain.QueryOption{}
	if len(queryGroupBy) > 0 {
		opts = append(opts, domain.WithGroupBy(queryGroupBy...))
	}
	if queryAggregate != "" {
		agg, err := domain.ParseAggregate(queryAggregate)
		if err != nil {
			return nil, err
		}
		opts = append(opts, domain.WithAggregate(agg))
	}
	if len(queryWhere) > 0 {
		filter, err := buildFilter(queryWhere, queryAny)
		if err != nil {
			return nil, err
		}
		opts = append(opts, domain.WithFilter(filter))
	}

	if len(queryArgs) == 0 {
		q, err := domain.NewQueryRequest(queryIndicator, from, to, opts...)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	raw, err := domain.NewRawQuery(queryIndicator, from, to, opts...)
	if err != nil {
		return nil, err
	}
	for _, arg := range queryArgs {
		key, value, err := internal.ParseArgument(arg)
		if err != nil {
			return nil, err
		}
		raw.AddQueryArgument(key, value)
	}
	return raw, nil
}

func buildFilter(exprs []string, matchAny bool) (domain.Predicate, error) {
	clauses := make([]domain.Predicate, 0, len(exprs))
	for _, expr := range exprs {
		clause, err := internal.ParseWhere(expr)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	if matchAny {
		return domain.AnyOf(clauses...)
	}
	return domain.AllOf(clauses...)
}

func aggregateNames() string {
	names := make([]string, 0, len(domain.Aggregates()))
	for _, a := range domain.Aggregates() {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}
