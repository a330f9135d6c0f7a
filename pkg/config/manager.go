// Package config implements the unified configuration document, its durable
// persistence, legacy migration, alias resolution, and the effective-config
// precedence chain.
package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

// Config directory resolution, in priority order: explicit WithDir option,
// then these environment variables, then ~/.nocodb-cli.
const (
	EnvConfigDir         = "NOCODB_CLI_CONFIG_DIR"
	EnvConfigDirFallback = "NOCODB_CONFIG_DIR"

	// ConfigFileName is the unified document file inside the config dir.
	ConfigFileName = "config.json"

	defaultDirName = ".nocodb-cli"
)

// Manager owns a single unified configuration document. The in-memory copy
// is always consistent with the on-disk one immediately after any mutating
// call returns. Callers must serialize access to one Manager instance; there
// is no internal locking.
type Manager struct {
	dir    string
	path   string
	cfg    *types.UnifiedConfig
	logger log.Logger
}

// Option customizes Manager construction.
type Option func(*Manager)

// WithDir overrides the config directory, ahead of environment variables and
// the per-user default.
func WithDir(dir string) Option {
	return func(m *Manager) { m.dir = dir }
}

// WithLogger sets the logger used by the manager and the persistence layer.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager loads (or migrates, or initializes) the configuration document
// and returns a manager bound to it.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.GetDefaultLogger().WithComponent("config")
	}
	if m.dir == "" {
		m.dir = resolveConfigDir()
	}
	m.path = filepath.Join(m.dir, ConfigFileName)

	doc, err := loadDocument(m.path)
	if err != nil {
		m.logger.Warn("config document unusable, attempting legacy migration", log.Err(err))
	}
	if doc != nil && doc.Version == types.ConfigVersion {
		doc.Normalize()
		m.cfg = doc
		return m, nil
	}

	migrated, any := migrateLegacy(m.dir, m.logger)
	m.cfg = migrated
	if any {
		m.logger.Info("migrated legacy configuration", log.Str("dir", m.dir))
		if err := m.persist(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Dir returns the resolved config directory.
func (m *Manager) Dir() string { return m.dir }

// Path returns the unified document path.
func (m *Manager) Path() string { return m.path }

func resolveConfigDir() string {
	if dir, ok := os.LookupEnv(EnvConfigDir); ok && dir != "" {
		return dir
	}
	if dir, ok := os.LookupEnv(EnvConfigDirFallback); ok && dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultDirName
	}
	return filepath.Join(home, defaultDirName)
}

func (m *Manager) persist() error {
	return saveDocument(m.path, m.cfg, m.logger)
}

// AddWorkspace validates and upserts a workspace profile.
func (m *Manager) AddWorkspace(name string, ws *types.WorkspaceConfig) error {
	if name == "" {
		return types.NewValidationError("workspace name is required")
	}
	if ws == nil {
		return types.NewValidationError("workspace definition is required")
	}
	ws = ws.Clone()
	ws.Normalize()
	if err := ws.Validate(); err != nil {
		return err
	}
	m.cfg.Workspaces[name] = ws
	return m.persist()
}

// RemoveWorkspace deletes a workspace. It returns false without error when
// the workspace does not exist. Removing the active workspace clears the
// active pointer.
func (m *Manager) RemoveWorkspace(name string) (bool, error) {
	if _, ok := m.cfg.Workspaces[name]; !ok {
		return false, nil
	}
	delete(m.cfg.Workspaces, name)
	if m.cfg.ActiveWorkspace == name {
		m.cfg.ActiveWorkspace = ""
	}
	if err := m.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// GetWorkspace returns a defensive copy of the named workspace.
func (m *Manager) GetWorkspace(name string) (*types.WorkspaceConfig, bool) {
	ws, ok := m.cfg.Workspaces[name]
	if !ok {
		return nil, false
	}
	return ws.Clone(), true
}

// ListWorkspaces returns workspace names in sorted order.
func (m *Manager) ListWorkspaces() []string {
	names := make([]string, 0, len(m.cfg.Workspaces))
	for name := range m.cfg.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetActiveWorkspace points the active-workspace pointer at a known
// workspace.
func (m *Manager) SetActiveWorkspace(name string) error {
	if _, ok := m.cfg.Workspaces[name]; !ok {
		return types.NewValidationError("workspace %q does not exist", name)
	}
	m.cfg.ActiveWorkspace = name
	return m.persist()
}

// GetActiveWorkspaceName returns the active workspace name, or false when no
// pointer is set or it references a workspace that no longer exists. The
// read is self-healing and does not mutate state.
func (m *Manager) GetActiveWorkspaceName() (string, bool) {
	name := m.cfg.ActiveWorkspace
	if name == "" {
		return "", false
	}
	if _, ok := m.cfg.Workspaces[name]; !ok {
		return "", false
	}
	return name, true
}

// GetActiveWorkspace returns a defensive copy of the active workspace.
func (m *Manager) GetActiveWorkspace() (*types.WorkspaceConfig, bool) {
	name, ok := m.GetActiveWorkspaceName()
	if !ok {
		return nil, false
	}
	return m.cfg.Workspaces[name].Clone(), true
}

// SetAlias upserts an alias in the named workspace.
func (m *Manager) SetAlias(workspace, alias, id string) error {
	ws, ok := m.cfg.Workspaces[workspace]
	if !ok {
		return types.NewValidationError("workspace %q does not exist", workspace)
	}
	if alias == "" {
		return types.NewValidationError("alias name is required")
	}
	ws.Aliases[alias] = id
	return m.persist()
}

// RemoveAlias deletes an alias from the named workspace. It returns false
// without error when the alias is absent.
func (m *Manager) RemoveAlias(workspace, alias string) (bool, error) {
	ws, ok := m.cfg.Workspaces[workspace]
	if !ok {
		return false, types.NewValidationError("workspace %q does not exist", workspace)
	}
	if _, ok := ws.Aliases[alias]; !ok {
		return false, nil
	}
	delete(ws.Aliases, alias)
	if err := m.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// GetSettings returns a defensive copy of the stored global settings.
func (m *Manager) GetSettings() types.GlobalSettings {
	return m.cfg.Settings.Clone()
}

// UpdateSettings merges the patch onto the current settings, validates the
// merged result, and persists it. An invalid patch is rejected entirely; no
// field is partially applied.
func (m *Manager) UpdateSettings(patch types.SettingsPatch) error {
	merged := patch.Apply(m.cfg.Settings)
	if err := merged.Validate(); err != nil {
		return err
	}
	m.cfg.Settings = merged
	return m.persist()
}

// ResolveAlias resolves a user-supplied name against the current document
// and active workspace. See Resolve for the resolution order.
func (m *Manager) ResolveAlias(input string) Resolution {
	return Resolve(input, m.cfg, m.cfg.ActiveWorkspace)
}

// Overrides carries caller-level (CLI flag) overrides into the effective
// configuration computation.
type Overrides struct {
	BaseURL     string
	Token       string
	BaseID      string
	WorkspaceID string
	Settings    types.SettingsPatch
}

// Effective is the fully resolved workspace and settings after the
// precedence chain: CLI override > environment variable > stored workspace >
// stored global settings > hard default.
type Effective struct {
	Workspace     *types.WorkspaceConfig
	WorkspaceName string
	Settings      types.GlobalSettings
}

// EffectiveConfig computes the effective workspace and settings. The
// workspace may be nil when no workspace is stored and the environment and
// overrides provide no base URL.
func (m *Manager) EffectiveConfig(overrides Overrides) Effective {
	ws, name := m.cfg.Workspaces[m.cfg.ActiveWorkspace], m.cfg.ActiveWorkspace
	var base *types.WorkspaceConfig
	if ws != nil {
		base = ws.Clone()
	} else {
		name = ""
	}

	base = applyEnvOverlay(base)

	if base == nil && overrides.BaseURL != "" {
		base = &types.WorkspaceConfig{}
		base.Normalize()
	}
	if base != nil {
		if overrides.BaseURL != "" {
			base.BaseURL = overrides.BaseURL
		}
		if overrides.Token != "" {
			base.Headers[types.AuthHeaderName] = overrides.Token
		}
		if overrides.BaseID != "" {
			base.BaseID = overrides.BaseID
		}
		if overrides.WorkspaceID != "" {
			base.WorkspaceID = overrides.WorkspaceID
		}
	}

	settings := overrides.Settings.Apply(m.cfg.Settings)
	return Effective{Workspace: base, WorkspaceName: name, Settings: settings}
}
