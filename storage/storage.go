// Package storage puts project images into an S3-compatible bucket and maps
// between object keys and the public URLs stored on project records.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ObjectStorage is the blob store the upload flow writes to.
type ObjectStorage interface {
	// Upload stores body under key and returns the public URL of the object.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the object at key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a public URL produced by Upload back to its key.
	KeyFromURL(url string) (string, bool)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeName lowercases name and collapses anything outside [a-z0-9] to single dashes.
func SanitizeName(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "image"
	}
	return s
}

// ProjectPrefix is the folder that holds every object of the project with slug.
func ProjectPrefix(slug string) string {
	return path.Join("projects", slug)
}

// ProjectKey builds projects/{slug}/{prefix}-{name}-{8 hex}.{ext}.
func ProjectKey(slug, prefix, filename, ext string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	unique := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s-%s-%s.%s", prefix, SanitizeName(base), unique, strings.TrimPrefix(ext, "."))
	return path.Join(ProjectPrefix(slug), name)
}

// PublicURL joins base and key with exactly one slash.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// KeyFromPublicURL strips base from url, reporting false when url is not under base.
func KeyFromPublicURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
