package user

import "strings"

// NormalizeIdentifiers cleans a user-supplied list of attendee identifiers:
// entries are trimmed, blanks dropped, and duplicates removed while keeping
// first-occurrence order. A nil input yields an empty result (attendees are
// optional).
func NormalizeIdentifiers(raw []string) []string {
	cleaned := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		cleaned = append(cleaned, item)
	}
	return cleaned
}
