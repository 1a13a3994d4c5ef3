package redis

import "strings"

// Keyspace prefixes every key the API writes so several services can share one redis.
type Keyspace string

const DefaultKeyspace Keyspace = "shareit"

// Key joins the non-empty parts under the keyspace with ':'.
func (k Keyspace) Key(parts ...string) string {
	var b strings.Builder
	b.WriteString(string(k))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
