package cache

import (
	"context"
	"net/url"
	"strings"
)

// Store is a byte-oriented key-value store with prefix invalidation.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key with the store's default expiration
	Set(ctx context.Context, key string, value []byte) error
	// InvalidatePrefix removes every key beginning with prefix and returns how many were removed
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
}

// Key joins a namespace, a kind and scope parts into a cache key, e.g.
// "surveys:item:<surveyID>:<userID>". The namespace is the unit of invalidation.
func Key(namespace, kind string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, namespace, kind)
	segments = append(segments, parts...)
	return strings.Join(segments, ":")
}

// ParamsPart renders query parameters deterministically (sorted by key) for use in a key.
func ParamsPart(values url.Values) string {
	if len(values) == 0 {
		return "-"
	}
	return values.Encode()
}
