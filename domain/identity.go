package domain

import "strings"

// Identity is the opaque, already-verified token naming one caller. It is
// issued outside this system and only ever compared for equality.
type Identity string

// Anonymous is the zero identity used for unauthenticated callers.
const Anonymous Identity = ""

// IsAnonymous reports whether the identity carries no caller.
func (id Identity) IsAnonymous() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id Identity) String() string {
	return string(id)
}

// Pair returns the two identities in canonical (lexicographic) order so an
// unordered pair always maps to the same key.
func Pair(a, b Identity) (Identity, Identity) {
	if b < a {
		return b, a
	}
	return a, b
}

// BlobRef points at a binary object (résumé, picture) kept by an external
// blob store. The value is never interpreted here.
type BlobRef string
