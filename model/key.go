package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

// ErrInvalidKeyFormat reports a composite key with no tier separator.
// It always signals a caller bug, never a runtime condition.
var ErrInvalidKeyFormat = errors.New("composite cache key missing tier separator")

// Well-known tier names. The manager accepts any tier table; these are the
// names the canonical key builders below produce.
const (
	TierSchema  = "schema"
	TierQuery   = "query"
	TierExplain = "explain"
	TierDocs    = "docs"
)

const keySeparator = ":"

// SplitKey splits a composite "tier:rest" key on the first colon only.
// The rest may itself contain colons and is never re-split.
func SplitKey(key string) (tier, rest string, err error) {
	i := strings.Index(key, keySeparator)
	if i < 0 {
		return "", "", fmt.Errorf("split key %q: %w", key, ErrInvalidKeyFormat)
	}
	return key[:i], key[i+1:], nil
}

// JoinKey builds the fully-qualified form of a tier-local key.
func JoinKey(tier, rest string) string {
	return tier + keySeparator + rest
}

// SchemaKey builds "schema:<connID>:<database>[:<table>]".
func SchemaKey(connID, database string, table ...string) string {
	key := TierSchema + keySeparator + connID + keySeparator + database
	if len(table) > 0 && table[0] != "" {
		key += keySeparator + table[0]
	}
	return key
}

// QueryKey builds "query:<connID>:<queryHash>".
func QueryKey(connID, queryHash string) string {
	return TierQuery + keySeparator + connID + keySeparator + queryHash
}

// ExplainKey builds "explain:<connID>:<queryHash>".
func ExplainKey(connID, queryHash string) string {
	return TierExplain + keySeparator + connID + keySeparator + queryHash
}

// DocsKey builds "docs:<docID>".
func DocsKey(docID string) string {
	return TierDocs + keySeparator + docID
}

var hasherPool = sync.Pool{New: func() any { return xxh3.New() }}

// HashQuery returns a stable, order-sensitive hash of the statement text
// rendered in base-36. Equal inputs always hash equal; collision freedom is
// not promised and not required by any caller.
func HashQuery(query string) string {
	// acquire reusable hasher
	hasher := hasherPool.Get().(*xxh3.Hasher)
	hasher.Reset()

	_, _ = hasher.WriteString(query)
	sum := hasher.Sum64()

	// release hasher after use
	hasherPool.Put(hasher)

	return strconv.FormatUint(sum, 36)
}
