package cmd

import (
	"github.com/rzbill/nocodb-cli/pkg/api/client"
	"github.com/rzbill/nocodb-cli/pkg/config"
)

// buildClientOptions computes the effective workspace and settings for this
// invocation and turns them into client options. Flag overrides sit above
// environment variables, which sit above the stored workspace.
func buildClientOptions(mgr *config.Manager) *client.ClientOptions {
	eff := mgr.EffectiveConfig(configOverridesFromFlags())
	opts := client.OptionsFromSettings(eff.Workspace, eff.Settings)
	opts.Logger = cliLogger().WithComponent("api-client")
	return opts
}

// configOverridesFromFlags collects the persistent override flags.
func configOverridesFromFlags() config.Overrides {
	return config.Overrides{
		BaseURL:     flagBaseURL,
		Token:       flagToken,
		BaseID:      flagBaseID,
		WorkspaceID: flagWorkspaceID,
	}
}

// newAPIClient creates an API client from the effective configuration.
func newAPIClient(mgr *config.Manager) (*client.Client, error) {
	return client.NewClient(buildClientOptions(mgr))
}
