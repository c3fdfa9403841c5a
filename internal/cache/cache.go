// Package cache provides filesystem-backed storage for transient resolution
// artifacts, letting one-shot CLI runs replay the last known result for a page.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/farsistream-cli/farsistream/filesystem"
	"github.com/farsistream-cli/farsistream/where"
)

// TTL bounds how long an artifact stays replayable. Stream URLs on these
// CDNs are often signed, so this errs well on the short side.
const TTL = 6 * time.Hour

func dir() string {
	return where.Artifacts()
}

// GenerateKey generates a deterministic SHA-256 hash from a page URL and
// artifact kind pair for use as a cache identifier.
func GenerateKey(pageURL, kind string) string {
	sanitized := strings.ToLower(strings.TrimSpace(pageURL)) + kind
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read attempts to retrieve and deserialize a cached artifact if it exists
// and has not exceeded its TTL.
func Read(key string, target interface{}) bool {
	path := filepath.Join(dir(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return false
	}

	return json.Unmarshal(data, target) == nil
}

// Write persists a serializable artifact using an atomic file swap.
func Write(key string, data interface{}) error {
	path := filepath.Join(dir(), key)
	tmpPath := path + ".tmp"

	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := filesystem.API().WriteFile(tmpPath, encoded, os.ModePerm); err != nil {
		return err
	}

	return filesystem.API().Rename(tmpPath, path)
}

// Remove deletes a single artifact if it exists.
func Remove(key string) {
	_ = filesystem.API().Remove(filepath.Join(dir(), key))
}

// CollectGarbage starts an asynchronous background task pruning expired
// artifacts from the filesystem.
func CollectGarbage() {
	go func() {
		entries, err := filesystem.API().ReadDir(dir())
		if err != nil {
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if time.Since(entry.ModTime()) > TTL {
				_ = filesystem.API().Remove(filepath.Join(dir(), entry.Name()))
			}
		}
	}()
}
