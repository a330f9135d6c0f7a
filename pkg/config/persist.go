package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/types"
)

const (
	tmpSuffix = ".tmp"
	bakSuffix = ".bak"

	// replaceAttempts bounds the remove+rename loop. Some platforms refuse
	// to rename over a file another process holds open; a short pause lets
	// transient locks clear.
	replaceAttempts   = 3
	replaceRetryDelay = 50 * time.Millisecond
)

// loadDocument reads and decodes the configuration document at path. It
// returns (nil, nil) when no file exists. A document that fails the schema
// check or does not decode is reported as an error; callers treat that the
// same as a version mismatch.
func loadDocument(path string) (*types.UnifiedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := validateDocument(data); err != nil {
		return nil, err
	}
	var cfg types.UnifiedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// saveDocument durably writes the configuration document to path.
//
// The write goes to a temporary sibling first, then replaces the target via
// rename. When a target already exists, a best-effort backup is taken and
// the remove+rename step is retried a few times before giving up; on
// exhaustion the temp file is discarded and the backup restored. A crash at
// any point leaves either the previous document or the new one at the
// target path, never a torn write.
func saveDocument(path string, cfg *types.UnifiedConfig, logger log.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return types.NewPersistenceError("failed to create config directory", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return types.NewPersistenceError("failed to encode config document", err)
	}
	data = append(data, '\n')

	tmpPath := path + tmpSuffix
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return types.NewPersistenceError("failed to write temp config file", err)
	}
	if info, err := os.Stat(tmpPath); err != nil || info.Size() == 0 {
		return types.NewPersistenceError("temp config file is missing or empty after write", err)
	}

	if !fileExists(path) {
		// No contender to race with, a single rename is enough.
		if err := os.Rename(tmpPath, path); err != nil {
			return types.NewPersistenceError("failed to move config file into place", err)
		}
		return nil
	}

	bakPath := path + bakSuffix
	bestEffort(logger, "backup existing config", func() error {
		return copyFile(path, bakPath)
	})

	var lastErr error
	replaced := false
	for attempt := 1; attempt <= replaceAttempts; attempt++ {
		if lastErr = replaceFile(tmpPath, path); lastErr == nil {
			replaced = true
			break
		}
		logger.Debug("config replace attempt failed",
			log.Int("attempt", attempt),
			log.Err(lastErr))
		if attempt < replaceAttempts {
			time.Sleep(replaceRetryDelay)
		}
	}

	if !replaced {
		bestEffort(logger, "remove orphaned temp config", func() error {
			return os.Remove(tmpPath)
		})
		if fileExists(bakPath) && !fileExists(path) {
			bestEffort(logger, "restore config backup", func() error {
				return copyFile(bakPath, path)
			})
		}
		return types.NewPersistenceError("failed to replace config file after retries", lastErr)
	}

	bestEffort(logger, "remove config backup", func() error {
		return os.Remove(bakPath)
	})
	return nil
}

// replaceFile removes the target (skipping removal if it is already gone)
// and renames the temp file onto it.
func replaceFile(tmpPath, target string) error {
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, target)
}

// bestEffort runs a cleanup step whose failure must not mask the primary
// outcome. Failures are logged at debug level and otherwise ignored.
func bestEffort(logger log.Logger, op string, fn func() error) {
	if err := fn(); err != nil && !os.IsNotExist(err) {
		logger.Debug("best-effort step failed", log.Str("op", op), log.Err(err))
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
