package config

import (
	"strings"

	"github.com/rzbill/nocodb-cli/pkg/types"
)

// Resolution is the outcome of an alias lookup. Workspace is nil when the
// input passed through unchanged (already a remote identifier).
type Resolution struct {
	ID            string
	Workspace     *types.WorkspaceConfig
	WorkspaceName string
}

// Resolve maps a user-supplied name to a remote identifier. It is a pure
// function of its inputs. Resolution order, first match wins:
//
//  1. Explicit namespace: "workspace.alias" (split on the first dot).
//  2. Alias in the active workspace, matched against the whole input.
//  3. The input names a workspace that has a baseId; resolve to that baseId.
//  4. Pass-through: the input is treated as an already-resolved identifier.
//
// Namespaced lookup always beats same-name ambiguity with the active
// workspace, and a workspace name can only shadow an alias when both alias
// forms fail.
func Resolve(input string, cfg *types.UnifiedConfig, activeWorkspace string) Resolution {
	if cfg == nil {
		return Resolution{ID: input}
	}

	if idx := strings.Index(input, "."); idx >= 0 {
		wsName, alias := input[:idx], input[idx+1:]
		if ws, ok := cfg.Workspaces[wsName]; ok {
			if id, ok := ws.Aliases[alias]; ok {
				return Resolution{ID: id, Workspace: ws.Clone(), WorkspaceName: wsName}
			}
		}
	}

	if activeWorkspace != "" {
		if ws, ok := cfg.Workspaces[activeWorkspace]; ok {
			if id, ok := ws.Aliases[input]; ok {
				return Resolution{ID: id, Workspace: ws.Clone(), WorkspaceName: activeWorkspace}
			}
		}
	}

	if ws, ok := cfg.Workspaces[input]; ok && ws.BaseID != "" {
		return Resolution{ID: ws.BaseID, Workspace: ws.Clone(), WorkspaceName: input}
	}

	return Resolution{ID: input}
}
