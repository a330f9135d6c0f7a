package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// Legacy file names from before the unified document. All three are
// optional; any that exist are folded into a fresh v2 document.
const (
	legacyGlobalFile   = "global.json"
	legacySettingsFile = "settings.json"
	legacyAliasFile    = "aliases.json"
)

// legacyGlobal is the old flat single-endpoint config.
type legacyGlobal struct {
	BaseURL     string            `json:"baseUrl"`
	BaseID      string            `json:"baseId"`
	WorkspaceID string            `json:"workspaceId"`
	APIToken    string            `json:"apiToken"`
	Headers     map[string]string `json:"headers"`
}

// legacyWorkspace is one entry of the old multi-workspace alias file.
type legacyWorkspace struct {
	BaseURL string            `json:"baseUrl"`
	BaseID  string            `json:"baseId"`
	Headers map[string]string `json:"headers"`
	Aliases map[string]string `json:"aliases"`
}

// migrateLegacy builds a v2 document from whatever legacy files exist under
// dir. The second return value reports whether anything was migrated.
//
// Merge rule: alias-file workspaces are created first; the flat global
// config then becomes (or is merged into) a workspace named "default" and is
// marked active, with its baseUrl/baseId/headers taking precedence over any
// alias-derived "default" entry.
func migrateLegacy(dir string, logger log.Logger) (*types.UnifiedConfig, bool) {
	cfg := types.NewUnifiedConfig()
	migrated := false

	var aliasWorkspaces map[string]legacyWorkspace
	if readLegacyFile(filepath.Join(dir, legacyAliasFile), &aliasWorkspaces, logger) {
		for name, lw := range aliasWorkspaces {
			ws := &types.WorkspaceConfig{
				BaseURL: lw.BaseURL,
				BaseID:  lw.BaseID,
				Headers: lw.Headers,
				Aliases: lw.Aliases,
			}
			ws.Normalize()
			cfg.Workspaces[name] = ws
		}
		migrated = true
	}

	var global legacyGlobal
	if readLegacyFile(filepath.Join(dir, legacyGlobalFile), &global, logger) {
		ws, ok := cfg.Workspaces["default"]
		if !ok {
			ws = &types.WorkspaceConfig{}
			ws.Normalize()
			cfg.Workspaces["default"] = ws
		}
		if global.BaseURL != "" {
			ws.BaseURL = global.BaseURL
		}
		if global.BaseID != "" {
			ws.BaseID = global.BaseID
		}
		if global.WorkspaceID != "" {
			ws.WorkspaceID = global.WorkspaceID
		}
		for k, v := range global.Headers {
			ws.Headers[k] = v
		}
		if global.APIToken != "" {
			ws.Headers[types.AuthHeaderName] = global.APIToken
		}
		cfg.ActiveWorkspace = "default"
		migrated = true
	}

	var settings types.SettingsPatch
	if readLegacyFile(filepath.Join(dir, legacySettingsFile), &settings, logger) {
		cfg.Settings = settings.Apply(cfg.Settings)
		migrated = true
	}

	cfg.Normalize()
	return cfg, migrated
}

// readLegacyFile decodes one optional legacy file. Unreadable or unparsable
// files are skipped with a warning; migration never fails outright.
func readLegacyFile(path string, v interface{}, logger log.Logger) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("skipping unreadable legacy config file", log.Str("path", path), log.Err(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("skipping unparsable legacy config file", log.Str("path", path), log.Err(err))
		return false
	}
	return true
}
