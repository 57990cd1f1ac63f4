// Package media resolves the image references stored in entity records.
package media

import "strings"

const uploadsMarker = "/uploads/"

// Resolver turns an image field into a fetchable URL. Records may hold a bare
// file name, an absolute URL, or a URL under some uploads directory (often
// recorded against a developer's localhost).
type Resolver struct {
	UploadsBase string // e.g. https://host:3017/uploads/
}

// NewResolver returns a resolver rooted at uploadsBase.
func NewResolver(uploadsBase string) Resolver {
	if !strings.HasSuffix(uploadsBase, "/") {
		uploadsBase += "/"
	}
	return Resolver{UploadsBase: uploadsBase}
}

// Resolve applies the rules in order:
//   - empty: no image
//   - localhost or uploads path: uploads base + last path segment
//   - any other http(s) URL: unchanged
//   - anything else: a file name under the uploads base
func (r Resolver) Resolve(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	if strings.Contains(value, "localhost") || strings.Contains(value, uploadsMarker) {
		return r.UploadsBase + value[strings.LastIndex(value, "/")+1:], true
	}
	if strings.HasPrefix(value, "http") {
		return value, true
	}
	return r.UploadsBase + value, true
}
