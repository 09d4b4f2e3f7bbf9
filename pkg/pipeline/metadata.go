package pipeline

import "strings"

// Sentinel defaults substituted for absent optional fields, so downstream
// consumers never see empty identifiers or null-ish values.
const (
	UnknownPurpose = "Unknown_Purpose"
	UnknownName    = "Unknown_Name"
	UnknownSurname = "Unknown_Surname"
	UnknownEmail   = "Unknown_Email"
	UnknownID      = "Unknown_ID"
	UnknownTime    = "Unknown_Time"
)

// Metadata is the decoded caller-supplied custom tag.
type Metadata struct {
	Purpose   string
	UserName  string
	UserEmail string
}

// DecodeCustomTag parses a `|`-delimited tag of key:value segments into a
// map. Each segment splits on the first `:` only, so values may themselves
// contain colons (timestamps, URLs). Later duplicate keys overwrite earlier
// ones. Segments without a `:` are skipped and returned as diagnostics; the
// decode itself never fails. An empty tag yields an empty map.
func DecodeCustomTag(tag string) (map[string]string, []string) {
	parts := make(map[string]string)
	if tag == "" {
		return parts, nil
	}
	var skipped []string
	for _, segment := range strings.Split(tag, "|") {
		key, value, ok := strings.Cut(segment, ":")
		if !ok {
			skipped = append(skipped, segment)
			continue
		}
		parts[key] = value
	}
	return parts, skipped
}

// MetadataFromTag decodes a custom tag and resolves the fixed key set with
// sentinel fallbacks.
func MetadataFromTag(tag string) (Metadata, []string) {
	parts, skipped := DecodeCustomTag(tag)
	return Metadata{
		Purpose:   valueOr(parts, "purpose", UnknownPurpose),
		UserName:  valueOr(parts, "user_name", UnknownName),
		UserEmail: valueOr(parts, "email", UnknownEmail),
	}, skipped
}

func valueOr(parts map[string]string, key, fallback string) string {
	if value, ok := parts[key]; ok {
		return value
	}
	return fallback
}
