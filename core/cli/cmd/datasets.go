package cmd

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lariat-data/lariat-go/core/cli/internal"
	"github.com/lariat-data/lariat-go/core/logger"
)

var datasetName string

var datasetsCmd = &cobra.Command{
	Use:     "datasets",
	Aliases: []string{"dataset", "ds"},
	Short:   "Browse computed and raw datasets",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List computed datasets",
	Args:  cobra.NoArgs,
	RunE:  listDatasets,
}

var datasetsGetCmd = &cobra.Command{
	Use:   "get <name> <source-id>",
	Short: "Show a computed dataset",
	Args:  cobra.ExactArgs(2),
	RunE:  getDataset,
}

var datasetsRawCmd = &cobra.Command{
	Use:   "raw [dataset-id...]",
	Short: "List the raw datasets computed datasets derive from",
	RunE:  listRawDatasets,
}

var datasetsFieldsCmd = &cobra.Command{
	Use:   "fields <name> <source-id>",
	Short: "List the flattened schema fields of a computed dataset",
	Args:  cobra.ExactArgs(2),
	RunE:  datasetFields,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.AddCommand(datasetsListCmd, datasetsGetCmd, datasetsRawCmd, datasetsFieldsCmd)

	datasetsListCmd.Flags().StringVar(&datasetName, "name", "", "Only datasets with this name")
}

func listDatasets(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	datasets, err := c.Datasets().List(cmd.Context(), datasetName)
	if err != nil {
		return logger.WithTag("datasets", err)
	}

	return render(cmd.OutOrStdout(), datasets, func(tw *tabwriter.Writer) {
		row(tw, "ID", "NAME", "SOURCE", "DATA SOURCE")
		for _, ds := range datasets {
			row(tw, ds.ID, ds.Name, ds.SourceID, ds.DataSource)
		}
	})
}

func getDataset(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	ds, err := c.Datasets().Get(cmd.Context(), args[0], args[1])
	if err != nil {
		return logger.WithTag("datasets", err)
	}

	return render(cmd.OutOrStdout(), ds, func(tw *tabwriter.Writer) {
		row(tw, "ID", ds.ID)
		row(tw, "Name", ds.Name)
		row(tw, "Source", ds.SourceID)
		row(tw, "Data source", ds.DataSource)
		row(tw, "Query", ds.Query)
	})
}

func listRawDatasets(cmd *cobra.Command, args []string) error {
	ids, err := internal.ParseIDs(args)
	if err != nil {
		return logger.WithTag("datasets", err)
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	raw, err := c.Datasets().RawDatasets(cmd.Context(), ids...)
	if err != nil {
		return logger.WithTag("datasets", err)
	}

	return render(cmd.OutOrStdout(), raw, func(tw *tabwriter.Writer) {
		row(tw, "NAME", "SOURCE", "DATA SOURCE")
		for _, r := range raw {
			row(tw, r.Name, r.SourceID, r.DataSource)
		}
	})
}

func datasetFields(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	ds, err := c.Datasets().Get(cmd.Context(), args[0], args[1])
	if err != nil {
		return logger.WithTag("datasets", err)
	}
	fields := ds.SchemaFields()

	return render(cmd.OutOrStdout(), fields, func(tw *tabwriter.Writer) {
		row(tw, "DATASET", "FIELD")
		for _, f := range fields {
			row(tw, f.DatasetID, f.Name)
		}
	})
}
