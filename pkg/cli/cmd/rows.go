package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rzbill/nocodb-cli/pkg/api/client"
	"github.com/rzbill/nocodb-cli/pkg/cli/format"
	"github.com/rzbill/nocodb-cli/pkg/rows"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

func newRowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Bulk row operations",
		Long: `Bulk row operations.

Tables can be referenced by id, by alias, or by "workspace.alias". Input
rows are read from a JSON file or from stdin with --file -.`,
	}

	cmd.AddCommand(newRowsBulkCmd("bulk-create", "Create rows in bulk"))
	cmd.AddCommand(newRowsBulkCmd("bulk-update", "Update rows in bulk (rows are matched by their Id field)"))
	cmd.AddCommand(newRowsBulkCmd("bulk-delete", "Delete rows in bulk (rows are matched by their Id field)"))
	cmd.AddCommand(newRowsUpsertCmd())
	cmd.AddCommand(newRowsBulkUpsertCmd())

	return cmd
}

// newRowService builds the row service for this invocation, plus an alias
// resolver bound to the same configuration.
func newRowService() (*rows.Service, func(string) string, error) {
	mgr, err := newConfigManager()
	if err != nil {
		return nil, nil, err
	}
	api, err := newAPIClient(mgr)
	if err != nil {
		return nil, nil, err
	}
	resolve := func(input string) string {
		return mgr.ResolveAlias(input).ID
	}
	return rows.NewService(client.NewTableClient(api), cliLogger()), resolve, nil
}

func newRowsBulkCmd(use, short string) *cobra.Command {
	var file string
	var failFast bool
	var batchSize int
	var output string

	cmd := &cobra.Command{
		Use:   use + " [table]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, resolve, err := newRowService()
			if err != nil {
				return err
			}
			rowList, err := readRowList(file)
			if err != nil {
				return err
			}

			opts := types.DefaultBulkOptions()
			opts.FailFast = failFast
			if batchSize > 0 {
				opts.BatchSize = batchSize
			}

			tableID := resolve(args[0])
			ctx := context.Background()

			var result *types.BulkResult
			switch use {
			case "bulk-create":
				result, err = svc.BulkCreate(ctx, tableID, rowList, opts)
			case "bulk-update":
				result, err = svc.BulkUpdate(ctx, tableID, rowList, opts)
			default:
				result, err = svc.BulkDelete(ctx, tableID, rowList, opts)
			}
			if err != nil {
				return err
			}
			return printBulkResult(result, output)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with an array of rows, or - for stdin (required)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "send batched bulk calls and abort on the first error")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per bulk call in fail-fast mode (default 1000)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newRowsUpsertCmd() *cobra.Command {
	var file string
	var matchField string
	var matchValue string
	var createOnly bool
	var updateOnly bool
	var output string

	cmd := &cobra.Command{
		Use:   "upsert [table]",
		Short: "Create or update one row depending on an existing match",
		Long: `Create or update one row depending on an existing match.

The table is queried for rows whose match field equals the match value
(taken from the payload when --match-value is not passed). Zero matches
creates the row, one match updates it, more than one is an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, resolve, err := newRowService()
			if err != nil {
				return err
			}
			payload, err := readRowObject(file)
			if err != nil {
				return err
			}

			var value interface{} = matchValue
			if !cmd.Flags().Changed("match-value") {
				var ok bool
				if value, ok = payload[matchField]; !ok {
					return types.NewValidationError("payload has no %q field and no --match-value was given", matchField)
				}
			}

			result, err := svc.Upsert(context.Background(), resolve(args[0]), payload, matchField,
				value, types.UpsertOptions{CreateOnly: createOnly, UpdateOnly: updateOnly})
			if err != nil {
				return err
			}

			if output != "" && output != "text" {
				return outputStructured(result, output)
			}
			format.Success("Row %s", result.Action)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with a single row object, or - for stdin (required)")
	cmd.Flags().StringVar(&matchField, "match-field", "", "field to match existing rows on (required)")
	cmd.Flags().StringVar(&matchValue, "match-value", "", "value to match (default: the payload's match-field value)")
	cmd.Flags().BoolVar(&createOnly, "create-only", false, "fail if a matching row already exists")
	cmd.Flags().BoolVar(&updateOnly, "update-only", false, "fail if no matching row exists")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("match-field")

	return cmd
}

func newRowsBulkUpsertCmd() *cobra.Command {
	var file string
	var matchField string
	var createOnly bool
	var updateOnly bool
	var output string

	cmd := &cobra.Command{
		Use:   "bulk-upsert [table]",
		Short: "Upsert many rows against a single match field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, resolve, err := newRowService()
			if err != nil {
				return err
			}
			rowList, err := readRowList(file)
			if err != nil {
				return err
			}

			result, err := svc.BulkUpsert(context.Background(), resolve(args[0]), rowList, matchField,
				types.UpsertOptions{CreateOnly: createOnly, UpdateOnly: updateOnly})
			if err != nil {
				return err
			}

			if output != "" && output != "text" {
				return outputStructured(result, output)
			}
			format.Success("Upserted: %d created, %d updated", len(result.Created), len(result.Updated))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with an array of rows, or - for stdin (required)")
	cmd.Flags().StringVar(&matchField, "match-field", "", "field to match existing rows on (required)")
	cmd.Flags().BoolVar(&createOnly, "create-only", false, "fail if any row already has a match")
	cmd.Flags().BoolVar(&updateOnly, "update-only", false, "fail if any row has no match")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("match-field")

	return cmd
}

// readInput reads the --file argument, with - meaning stdin.
func readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

// readRowList reads and decodes a JSON array of rows.
func readRowList(file string) ([]types.Row, error) {
	data, err := readInput(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, types.NewValidationError("input must be a JSON array of rows")
	}
	var rowList []types.Row
	if err := json.Unmarshal(data, &rowList); err != nil {
		return nil, types.NewValidationError("input is not valid JSON: %v", err)
	}
	return rowList, nil
}

// readRowObject reads and decodes a single JSON row object.
func readRowObject(file string) (types.Row, error) {
	data, err := readInput(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, types.NewValidationError("input must be a single JSON object")
	}
	var row types.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, types.NewValidationError("input is not valid JSON: %v", err)
	}
	return row, nil
}

// printBulkResult renders a bulk result: counts, then the per-item failures
// with the original input echoed back.
func printBulkResult(result *types.BulkResult, output string) error {
	if output != "" && output != "text" && output != "table" {
		return outputStructured(result, output)
	}

	switch {
	case result.Created != nil:
		format.Success("Created: %d", result.Succeeded())
	case result.Updated != nil:
		format.Success("Updated: %d", result.Succeeded())
	case result.Deleted != nil:
		format.Success("Deleted: %d", result.Succeeded())
	}

	if result.Failed == nil {
		return nil
	}
	format.Error("Failed: %d", *result.Failed)

	// Long error messages and echoed items are cut to the terminal width so
	// the failure table stays readable.
	cell := format.TerminalWidth() / 3
	table := newListTable([]string{"INDEX", "CODE", "ERROR", "ITEM"})
	for _, e := range result.Errors {
		item, _ := json.Marshal(e.Item)
		table.AddRow(fmt.Sprintf("%d", e.Index), e.Code,
			format.Truncate(e.Error, cell), format.Truncate(string(item), cell))
	}
	return table.Render()
}
