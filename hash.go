package loom

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText returns the hex SHA-256 of text with outer whitespace removed.
// Resource bundle entries are already trimmed by serialization, so equal
// entries hash equal regardless of how the caller obtained them.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// CacheKey builds a translation memory key from a content hash and the
// target language.
func CacheKey(hash, targetLang string) string {
	return hash + ":" + targetLang
}

// CacheKeyExtended additionally scopes the key by source language and
// model, for memories shared across differently configured translators.
func CacheKeyExtended(hash, sourceLang, targetLang, model string) string {
	return strings.Join([]string{hash, sourceLang, targetLang, model}, ":")
}
