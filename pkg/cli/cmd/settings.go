package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rzbill/nocodb-cli/pkg/cli/format"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage global HTTP settings",
		Long: `Manage global HTTP settings.

These apply to every workspace: request timeout, retry count, delay between
retries, and the HTTP status codes that trigger a retry.`,
	}

	cmd.AddCommand(newSettingsViewCmd())
	cmd.AddCommand(newSettingsSetCmd())

	return cmd
}

func newSettingsViewCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "View global settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}
			settings := mgr.GetSettings()

			if output != "" && output != "text" {
				return outputStructured(settings, output)
			}

			format.Info("Timeout:            %d ms", settings.TimeoutMs)
			format.Info("Retry count:        %d", settings.RetryCount)
			format.Info("Retry delay:        %d ms", settings.RetryDelay)
			format.Info("Retry status codes: %s", joinInts(settings.RetryStatusCodes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")
	return cmd
}

func newSettingsSetCmd() *cobra.Command {
	var timeoutMs int
	var retryCount int
	var retryDelay int
	var retryStatusCodes []int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update global settings",
		Long: `Update global settings.

Only the flags you pass are changed. An invalid value rejects the whole
update; nothing is partially applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager()
			if err != nil {
				return err
			}

			var patch types.SettingsPatch
			if cmd.Flags().Changed("timeout-ms") {
				patch.TimeoutMs = &timeoutMs
			}
			if cmd.Flags().Changed("retry-count") {
				patch.RetryCount = &retryCount
			}
			if cmd.Flags().Changed("retry-delay") {
				patch.RetryDelay = &retryDelay
			}
			if cmd.Flags().Changed("retry-status-codes") {
				patch.RetryStatusCodes = retryStatusCodes
			}
			if patch.TimeoutMs == nil && patch.RetryCount == nil &&
				patch.RetryDelay == nil && patch.RetryStatusCodes == nil {
				return fmt.Errorf("nothing to update; pass at least one settings flag")
			}

			if err := mgr.UpdateSettings(patch); err != nil {
				return err
			}
			format.Success("Settings updated")
			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "request timeout in milliseconds")
	cmd.Flags().IntVar(&retryCount, "retry-count", 0, "number of retries for transient failures")
	cmd.Flags().IntVar(&retryDelay, "retry-delay", 0, "delay between retries in milliseconds")
	cmd.Flags().IntSliceVar(&retryStatusCodes, "retry-status-codes", nil, "HTTP status codes that trigger a retry")

	return cmd
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
