package entity

import (
	"net/url"
	"strings"
)

// NormalizeURL turns whatever the object store reported into a path relative to
// the bucket, e.g. "http://minio:9000/pet-photos/a.jpg" -> "/a.jpg".
func NormalizeURL(raw, bucket string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	path := raw
	if parsed, err := url.Parse(raw); err == nil && (parsed.Scheme != "" || parsed.Host != "") {
		path = parsed.EscapedPath()
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
	}

	path = "/" + strings.TrimLeft(path, "/")
	if bucket != "" {
		prefix := "/" + bucket
		if path == prefix {
			return "/"
		}
		if strings.HasPrefix(path, prefix+"/") {
			path = strings.TrimPrefix(path, prefix)
		}
	}
	return path
}
