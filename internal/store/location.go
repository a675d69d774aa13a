package store

import (
	"fmt"
	"strings"
)

// Scheme identifies the backend a location refers to.
type Scheme string

// Supported location schemes.
const (
	SchemeFile Scheme = "file"
	SchemeS3   Scheme = "s3"
	SchemeGCS  Scheme = "gs"
	SchemeHTTP Scheme = "http"
)

// Location is a parsed archive address.
type Location struct {
	Scheme Scheme
	// Bucket is set for S3 and GCS locations.
	Bucket string
	// Key is the object key, the URL for HTTP locations, or the
	// filesystem path for local files.
	Key string
}

// String returns the location in the form it was given.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3, SchemeGCS:
		return string(l.Scheme) + "://" + l.Bucket + "/" + l.Key
	default:
		return l.Key
	}
}

// ParseLocation parses "s3://bucket/key", "gs://bucket/key",
// "http(s)://..." or a plain filesystem path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("empty location")
	}

	switch {
	case strings.HasPrefix(raw, "s3://"):
		return parseBucketPath(SchemeS3, strings.TrimPrefix(raw, "s3://"))
	case strings.HasPrefix(raw, "gs://"):
		return parseBucketPath(SchemeGCS, strings.TrimPrefix(raw, "gs://"))
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return Location{Scheme: SchemeHTTP, Key: raw}, nil
	case strings.HasPrefix(raw, "file://"):
		return Location{Scheme: SchemeFile, Key: strings.TrimPrefix(raw, "file://")}, nil
	default:
		return Location{Scheme: SchemeFile, Key: raw}, nil
	}
}

func parseBucketPath(scheme Scheme, path string) (Location, error) {
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return Location{}, fmt.Errorf("invalid %s location: missing bucket name", scheme)
	}
	if len(parts) < 2 || strings.Trim(parts[1], "/") == "" {
		return Location{}, fmt.Errorf("invalid %s location: missing object key", scheme)
	}
	return Location{Scheme: scheme, Bucket: parts[0], Key: parts[1]}, nil
}
