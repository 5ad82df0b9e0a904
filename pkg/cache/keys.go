package cache

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// keyPrefix namespaces every cache key by tenant so ClearTenant can drop a
// whole namespace by prefix scan.
func keyPrefix(tenantID uuid.UUID) string {
	return "tenant:" + tenantID.String() + ":"
}

// Key builds the cache key for a tenant, query type and parameter set.
// Params are serialized in sorted key order so two logically identical
// parameter sets always map to the same key regardless of construction order.
func Key(tenantID uuid.UUID, queryType string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(keyPrefix(tenantID))
	b.WriteString(queryType)

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte(':')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(params[k])
		}
	}

	return b.String()
}
