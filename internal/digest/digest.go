// Package digest derives stable identity keys for searches.
//
// A digest is an opaque deduplication key, not a security control: two searches
// are the same search exactly when their digests match.
package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/stocklens/backend/internal/domain"
)

// Algorithm names a hash function using the Web Crypto spelling
type Algorithm string

const (
	SHA1   Algorithm = "SHA-1"
	SHA256 Algorithm = "SHA-256"
	SHA384 Algorithm = "SHA-384"
	SHA512 Algorithm = "SHA-512"
)

// DefaultAlgorithm is used for search identities
const DefaultAlgorithm = SHA1

// ParseAlgorithm accepts "SHA-1", "sha1", "sha-256" and similar spellings
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	switch normalized {
	case "SHA1":
		return SHA1, nil
	case "SHA256":
		return SHA256, nil
	case "SHA384":
		return SHA384, nil
	case "SHA512":
		return SHA512, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedAlgorithm, name)
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedAlgorithm, string(a))
}

// Sum hashes the UTF-8 bytes of s and returns lowercase hex.
// The width depends on the algorithm (40 characters for SHA-1).
func Sum(s string, algo Algorithm) (string, error) {
	h, err := algo.newHash()
	if err != nil {
		return "", err
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IdentityKey is the order-sensitive "sku/title/image" string that is hashed.
// Missing fields are empty strings.
func IdentityKey(id domain.SearchIdentity) string {
	return id.SKU + "/" + id.Title + "/" + id.Image
}

// Identity returns the SHA-1 digest of a search identity
func Identity(id domain.SearchIdentity) string {
	sum := sha1.Sum([]byte(IdentityKey(id)))
	return hex.EncodeToString(sum[:])
}
