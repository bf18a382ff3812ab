package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex SHA-256 of data. Renderers hash DOT source with it,
// so canvases that produce identical DOT share one cached artifact.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// artifactKey formats "artifact:<format>:<source hash>". The format is
// lowercased so "SVG" and "svg" address the same entry.
func artifactKey(sourceHash, format string) string {
	return "artifact:" + strings.ToLower(format) + ":" + sourceHash
}
