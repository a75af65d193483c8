// In file: internal/version/version.go

// Package version centralizes the versioning for different logical components of the agent.
//
// Version strings are folded into every persistent cache key. Bumping a component
// version orphans all keys written under the old one, so stale entries are never read.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for different logical parts of the application.
// Increment a version here before deploying a change to that component.
var ComponentVersions = struct {
	// Tools changes whenever a tool's output format or the calculator pipeline changes.
	Tools string

	// Corpus changes whenever chunking or the embedding input format changes.
	Corpus string

	// Prompts changes whenever the classifier, reasoning or tool prompt templates change.
	Prompts string
}{
	Tools:   "v1.0",
	Corpus:  "v1.0",
	Prompts: "v1.0",
}

// String renders all component versions compactly, e.g. "tv1.0_cv1.0_pv1.0".
func String() string {
	return fmt.Sprintf("tv%s_cv%s_pv%s",
		ComponentVersions.Tools,
		ComponentVersions.Corpus,
		ComponentVersions.Prompts,
	)
}

// GenerateVersionedCacheKey creates a consistent, version-aware cache key.
//
// Example output: "embeddingcache:a1b2c3d4...:tv1.0_cv1.0_pv1.0"
func GenerateVersionedCacheKey(prefix, input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	inputHash := hex.EncodeToString(hasher.Sum(nil))

	return fmt.Sprintf("%s:%s:%s", prefix, inputHash, String())
}
