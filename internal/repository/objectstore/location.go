package objectstore

import (
	"regexp"
	"strings"

	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
)

const s3Scheme = "s3://"

var repeatedSlashes = regexp.MustCompile(`/{2,}`)

// NormalizeLocation ensures a single trailing slash and collapses repeated
// slashes everywhere except the scheme delimiter.
func NormalizeLocation(location string) string {
	if !strings.HasSuffix(location, "/") {
		location += "/"
	}

	scheme, rest, found := strings.Cut(location, "://")
	if !found {
		return repeatedSlashes.ReplaceAllString(location, "/")
	}

	rest = strings.TrimLeft(rest, "/")
	rest = repeatedSlashes.ReplaceAllString(rest, "/")
	if rest == "" {
		return scheme + "://"
	}
	return scheme + "://" + rest
}

// ParseS3Location splits s3://bucket/prefix into bucket and prefix. The prefix
// keeps its trailing slash and may be empty.
func ParseS3Location(location string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return "", "", apperrors.ErrUnsupportedLocation
	}

	bucket, prefix, _ = strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if bucket == "" {
		return "", "", apperrors.ErrUnsupportedLocation
	}
	return bucket, prefix, nil
}
