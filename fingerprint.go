package localeflow

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint computes the content fingerprint of a document: the lower-case
// hex SHA-256 digest of its canonical serialization. The canonical form sorts
// object keys, so two logically identical documents always share a
// fingerprint regardless of key insertion order.
func Fingerprint(doc *Value) string {
	var buf bytes.Buffer
	if err := doc.AppendCanonical(&buf); err != nil {
		// Canonical encoding of a well-formed Value cannot fail; a failure
		// here means a corrupted tree.
		panic("localeflow: canonical encoding failed: " + err.Error())
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// HashText computes the SHA-256 hash of the trimmed text. Used as the
// segment identity for the translation-memory cache and for diffing.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])
}

// SegmentCacheKey builds the translation-memory key for a segment hash and
// target locale.
func SegmentCacheKey(hash, locale string) string {
	return hash + ":" + locale
}

// SegmentCacheKeyExtended builds a translation-memory key that also carries
// the source locale and model. Use this when translations from different
// source locales or models must not collide.
func SegmentCacheKeyExtended(hash, sourceLocale, targetLocale, model string) string {
	return hash + ":" + sourceLocale + ":" + targetLocale + ":" + model
}
