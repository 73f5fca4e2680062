package cmd

import (
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lariat-data/lariat-go/core/cli/internal"
	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/logger"
)

var (
	indicatorDatasetIDs []string
	indicatorTags       []string
	indicatorFields     []string
	dimensionNames      []string
)

var indicatorsCmd = &cobra.Command{
	Use:     "indicators",
	Aliases: []string{"indicator", "ind"},
	Short:   "Browse indicator definitions",
}

var indicatorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indicators, optionally filtered by dataset, tag or field",
	Args:  cobra.NoArgs,
	RunE:  listIndicators,
}

var indicatorsGetCmd = &cobra.Command{
	Use:   "get <indicator-id>",
	Short: "Show one indicator",
	Args:  cobra.ExactArgs(1),
	RunE:  getIndicator,
}

var indicatorsDimensionsCmd = &cobra.Command{
	Use:   "dimensions <indicator-id>",
	Short: "List the distinct values of an indicator's dimensions",
	Args:  cobra.ExactArgs(1),
	RunE:  indicatorDimensions,
}

func init() {
	rootCmd.AddCommand(indicatorsCmd)
	indicatorsCmd.AddCommand(indicatorsListCmd, indicatorsGetCmd, indicatorsDimensionsCmd)

	indicatorsListCmd.Flags().StringSliceVar(&indicatorDatasetIDs, "dataset-id", nil, "Only indicators computed on these datasets")
	indicatorsListCmd.Flags().StringSliceVar(&indicatorTags, "tag", nil, "Only indicators with any of these tags")
	indicatorsListCmd.Flags().StringSliceVar(&indicatorFields, "field", nil, "Only indicators grouped by any of these fields")
	indicatorsDimensionsCmd.Flags().StringSliceVar(&dimensionNames, "dimension", nil, "Dimensions to list (default: all)")
}

func listIndicators(cmd *cobra.Command, _ []string) error {
	ids, err := internal.ParseIDs(indicatorDatasetIDs)
	if err != nil {
		return logger.WithTag("indicators", err)
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	indicators, err := c.Indicators().List(cmd.Context(), domain.IndicatorFilter{
		DatasetIDs: ids,
		Tags:       indicatorTags,
		Fields:     indicatorFields,
	})
	if err != nil {
		return logger.WithTag("indicators", err)
	}

	return render(cmd.OutOrStdout(), indicators, func(tw *tabwriter.Writer) {
		row(tw, "ID", "NAME", "DATASET", "DIMENSIONS", "TAGS")
		for _, ind := range indicators {
			row(tw, ind.ID, ind.Name, ind.DatasetName, strings.Join(ind.Dimensions, ","), strings.Join(ind.Tags, ","))
		}
	})
}

func getIndicator(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return logger.WithTag("indicators", err)
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	ind, err := c.Indicators().Get(cmd.Context(), id)
	if err != nil {
		return logger.WithTag("indicators", err)
	}

	return render(cmd.OutOrStdout(), ind, func(tw *tabwriter.Writer) {
		row(tw, "ID", ind.ID)
		row(tw, "Name", ind.Name)
		row(tw, "Dataset", ind.DatasetName+" ("+strconv.FormatInt(ind.DatasetID, 10)+")")
		row(tw, "Query", ind.Query)
		row(tw, "Dimensions", strings.Join(ind.Dimensions, ", "))
		row(tw, "Aggregations", strings.Join(ind.Aggregations, ", "))
		row(tw, "Tags", strings.Join(ind.Tags, ", "))
	})
}

func indicatorDimensions(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return logger.WithTag("indicators", err)
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	dims, err := c.Indicators().DimensionValues(cmd.Context(), id, dimensionNames...)
	if err != nil {
		return logger.WithTag("indicators", err)
	}

	return render(cmd.OutOrStdout(), dims, func(tw *tabwriter.Writer) {
		row(tw, "DIMENSION", "VALUES")
		for _, name := range sortedKeys(dims) {
			row(tw, name, strings.Join(dims[name], ", "))
		}
	})
}

func parseID(arg string) (int64, error) {
	ids, err := internal.ParseIDs([]string{arg})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}
