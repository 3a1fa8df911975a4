package wiki

import (
	"encoding/json"
	"strings"
)

// decodeInto copies v into the pointer out through JSON, the same encoding
// the tiers use, so direct-fetch fallbacks behave identically to cache hits.
func decodeInto(v, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// hasSuffixSegment reports whether key's final slash-separated segment
// equals segment.
func hasSuffixSegment(key, segment string) bool {
	return strings.HasSuffix(key, "/"+segment)
}

// containsSegment reports whether key contains sub as a slash-delimited
// fragment.
func containsSegment(key, sub string) bool {
	return strings.Contains(key, "/"+sub)
}
