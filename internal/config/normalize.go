package config

import "strings"

// normalize canonicalizes user-typed values before defaults and validation:
// enumerations are lowercased, list entries trimmed, empties and repeats dropped.
func (c *Config) normalize() {
	c.DataDir = strings.TrimSpace(c.DataDir)
	c.Storage.Backend = lowerTrim(c.Storage.Backend)
	c.Storage.Path = strings.TrimSpace(c.Storage.Path)
	c.Log.Level = lowerTrim(c.Log.Level)
	c.Log.Format = lowerTrim(c.Log.Format)
	c.Telemetry.Protocol = lowerTrim(c.Telemetry.Protocol)

	if c.Storage.Backend == "pg" || c.Storage.Backend == "postgresql" {
		c.Storage.Backend = BackendPostgres
	}
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}

	c.Permissions.Admins = normalizeList(c.Permissions.Admins, strings.TrimSpace)
	if c.Permissions.TrustedChannels != nil {
		c.Permissions.TrustedChannels = normalizeList(c.Permissions.TrustedChannels, lowerTrim)
	}
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeList maps fn over items, dropping empty results and repeats.
// It returns a non-nil slice so an explicit empty list stays explicit.
func normalizeList(items []string, fn func(string) string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = fn(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
