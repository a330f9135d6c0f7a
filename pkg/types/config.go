package types

import (
	"net/url"
	"strings"
)

// ConfigVersion is the schema tag of the unified configuration document.
// Any other value triggers legacy migration.
const ConfigVersion = 2

// AuthHeaderName is the header carrying the API token.
const AuthHeaderName = "xc-token"

// WorkspaceConfig is one remote-endpoint profile: a base URL, default
// headers, an optional default base, and a set of friendly-name aliases.
type WorkspaceConfig struct {
	BaseURL     string            `json:"baseUrl"`
	Headers     map[string]string `json:"headers"`
	BaseID      string            `json:"baseId,omitempty"`
	WorkspaceID string            `json:"workspaceId,omitempty"`
	Aliases     map[string]string `json:"aliases"`
}

// Clone returns a defensive copy with independent header and alias maps.
func (w *WorkspaceConfig) Clone() *WorkspaceConfig {
	if w == nil {
		return nil
	}
	out := &WorkspaceConfig{
		BaseURL:     w.BaseURL,
		BaseID:      w.BaseID,
		WorkspaceID: w.WorkspaceID,
		Headers:     make(map[string]string, len(w.Headers)),
		Aliases:     make(map[string]string, len(w.Aliases)),
	}
	for k, v := range w.Headers {
		out.Headers[k] = v
	}
	for k, v := range w.Aliases {
		out.Aliases[k] = v
	}
	return out
}

// Normalize backfills nil header and alias maps so loaded workspaces always
// carry empty maps, never absent ones.
func (w *WorkspaceConfig) Normalize() {
	if w.Headers == nil {
		w.Headers = make(map[string]string)
	}
	if w.Aliases == nil {
		w.Aliases = make(map[string]string)
	}
}

// Validate checks a workspace definition before it is accepted into the
// configuration.
func (w *WorkspaceConfig) Validate() error {
	if strings.TrimSpace(w.BaseURL) == "" {
		return NewValidationError("workspace baseUrl is required")
	}
	u, err := url.Parse(w.BaseURL)
	if err != nil || !strings.HasPrefix(u.Scheme, "http") || u.Host == "" {
		return NewValidationError("workspace baseUrl %q is not a valid http(s) URL", w.BaseURL)
	}
	return nil
}

// GlobalSettings holds process-wide HTTP behavior defaults.
type GlobalSettings struct {
	TimeoutMs        int   `json:"timeoutMs"`
	RetryCount       int   `json:"retryCount"`
	RetryDelay       int   `json:"retryDelay"`
	RetryStatusCodes []int `json:"retryStatusCodes"`
}

// DefaultSettings returns the hard defaults for global settings.
func DefaultSettings() GlobalSettings {
	return GlobalSettings{
		TimeoutMs:        30000,
		RetryCount:       3,
		RetryDelay:       1000,
		RetryStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// Clone returns a defensive copy with an independent status-code slice.
func (s GlobalSettings) Clone() GlobalSettings {
	out := s
	out.RetryStatusCodes = append([]int{}, s.RetryStatusCodes...)
	return out
}

// Validate checks merged settings before they are persisted.
func (s GlobalSettings) Validate() error {
	if s.TimeoutMs <= 0 {
		return NewValidationError("settings timeoutMs must be > 0, got %d", s.TimeoutMs)
	}
	if s.RetryCount < 0 {
		return NewValidationError("settings retryCount must be >= 0, got %d", s.RetryCount)
	}
	if s.RetryDelay < 0 {
		return NewValidationError("settings retryDelay must be >= 0, got %d", s.RetryDelay)
	}
	for _, code := range s.RetryStatusCodes {
		if code < 100 || code > 599 {
			return NewValidationError("settings retryStatusCodes entry %d is outside [100, 599]", code)
		}
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left untouched
// by the merge.
type SettingsPatch struct {
	TimeoutMs        *int  `json:"timeoutMs,omitempty"`
	RetryCount       *int  `json:"retryCount,omitempty"`
	RetryDelay       *int  `json:"retryDelay,omitempty"`
	RetryStatusCodes []int `json:"retryStatusCodes,omitempty"`
}

// Apply overlays the patch onto a copy of the given settings and returns it.
func (p SettingsPatch) Apply(base GlobalSettings) GlobalSettings {
	out := base.Clone()
	if p.TimeoutMs != nil {
		out.TimeoutMs = *p.TimeoutMs
	}
	if p.RetryCount != nil {
		out.RetryCount = *p.RetryCount
	}
	if p.RetryDelay != nil {
		out.RetryDelay = *p.RetryDelay
	}
	if p.RetryStatusCodes != nil {
		out.RetryStatusCodes = append([]int{}, p.RetryStatusCodes...)
	}
	return out
}

// UnifiedConfig is the persisted root configuration document.
type UnifiedConfig struct {
	Version         int                         `json:"version"`
	ActiveWorkspace string                      `json:"activeWorkspace,omitempty"`
	Workspaces      map[string]*WorkspaceConfig `json:"workspaces"`
	Settings        GlobalSettings              `json:"settings"`
}

// NewUnifiedConfig returns a fresh default document.
func NewUnifiedConfig() *UnifiedConfig {
	return &UnifiedConfig{
		Version:    ConfigVersion,
		Workspaces: make(map[string]*WorkspaceConfig),
		Settings:   DefaultSettings(),
	}
}

// Normalize backfills missing maps and settings after load. Safe to call
// repeatedly; a second call is a no-op.
func (c *UnifiedConfig) Normalize() {
	if c.Workspaces == nil {
		c.Workspaces = make(map[string]*WorkspaceConfig)
	}
	for _, ws := range c.Workspaces {
		ws.Normalize()
	}
	defaults := DefaultSettings()
	if c.Settings.TimeoutMs == 0 {
		c.Settings.TimeoutMs = defaults.TimeoutMs
	}
	if c.Settings.RetryStatusCodes == nil {
		c.Settings.RetryStatusCodes = defaults.RetryStatusCodes
	}
	if _, ok := c.Workspaces[c.ActiveWorkspace]; c.ActiveWorkspace != "" && !ok {
		c.ActiveWorkspace = ""
	}
}
