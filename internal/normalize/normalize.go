package normalize

import (
	"net/url"
	"strings"
)

var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_content":  {},
	"utm_term":     {},
	"ref":          {},
	"source":       {},
}

// URL returns the identity key of raw for deduplication.
// The key forces https, lowercases the host, drops trailing slashes, tracking
// parameters and the fragment. It must never be used for display or posting.
// Empty or unparsable input is returned unchanged.
func URL(raw string) string {
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false
	u.RawQuery = cleanQuery(u.RawQuery)

	return u.String()
}

// Same reports whether two links share an identity key.
func Same(a, b string) bool {
	return URL(a) == URL(b)
}

func cleanQuery(raw string) string {
	if raw == "" {
		return ""
	}

	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(raw)
	for key, vals := range values {
		if _, tracked := trackingParams[strings.ToLower(key)]; tracked {
			delete(values, key)
			continue
		}

		kept := vals[:0]
		for _, v := range vals {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(values, key)
			continue
		}
		values[key] = kept
	}
	return values.Encode()
}
