package config

import (
	"os"

	"github.com/rzbill/nocodb-cli/pkg/types"
)

// Environment variables consumed by the effective-config overlay.
const (
	EnvBaseURL     = "NOCODB_URL"
	EnvAPIToken    = "NOCODB_API_TOKEN"
	EnvBaseID      = "NOCODB_BASE_ID"
	EnvWorkspaceID = "NOCODB_WORKSPACE_ID"
)

// applyEnvOverlay overlays the recognized environment variables onto a copy
// of ws. With no variables set the input is returned unchanged. With no
// workspace and at least NOCODB_URL set, an ephemeral workspace is
// synthesized from the environment alone. The token variable is written into
// the headers map under the auth header key, leaving other headers intact.
func applyEnvOverlay(ws *types.WorkspaceConfig) *types.WorkspaceConfig {
	baseURL, hasBaseURL := os.LookupEnv(EnvBaseURL)
	token, hasToken := os.LookupEnv(EnvAPIToken)
	baseID, hasBaseID := os.LookupEnv(EnvBaseID)
	workspaceID, hasWorkspaceID := os.LookupEnv(EnvWorkspaceID)

	if !hasBaseURL && !hasToken && !hasBaseID && !hasWorkspaceID {
		return ws
	}

	if ws == nil {
		if !hasBaseURL {
			return nil
		}
		ws = &types.WorkspaceConfig{}
		ws.Normalize()
	} else {
		ws = ws.Clone()
	}

	if hasBaseURL {
		ws.BaseURL = baseURL
	}
	if hasToken {
		ws.Headers[types.AuthHeaderName] = token
	}
	if hasBaseID {
		ws.BaseID = baseID
	}
	if hasWorkspaceID {
		ws.WorkspaceID = workspaceID
	}
	return ws
}
