// Package storage implements the local bucketed file store for uploaded images.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"glimpse/internal/observability"
)

// Buckets recognized by the store.
const (
	BucketPosts   = "posts"
	BucketProfile = "profile"
)

var filenameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-]+\.[a-zA-Z0-9]+$`)

// LocalStore writes files under root/<bucket>/<filename>.
type LocalStore struct {
	root string
}

// NewLocalStore creates the bucket directories under root.
func NewLocalStore(root string) (*LocalStore, error) {
	for _, bucket := range []string{BucketPosts, BucketProfile} {
		if err := os.MkdirAll(filepath.Join(root, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage bucket %s: %w", bucket, err)
		}
	}
	return &LocalStore{root: root}, nil
}

// ValidBucket reports whether the bucket name is one the store serves.
func ValidBucket(bucket string) bool {
	return bucket == BucketPosts || bucket == BucketProfile
}

// ValidFilename rejects path traversal and separator characters.
func ValidFilename(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	return filenameRegex.MatchString(name)
}

// Save writes data as bucket/filename and returns the relative stored path.
func (s *LocalStore) Save(bucket, filename string, data []byte) (string, error) {
	if !ValidBucket(bucket) {
		return "", fmt.Errorf("unknown storage bucket %q", bucket)
	}
	if !ValidFilename(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	path := filepath.Join(s.root, bucket, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s/%s: %w", bucket, filename, err)
	}

	observability.StorageOperations.WithLabelValues(bucket, "save").Inc()
	return bucket + "/" + filename, nil
}

// Open reads a stored file by its bucket and filename.
func (s *LocalStore) Open(bucket, filename string) ([]byte, error) {
	if !ValidBucket(bucket) || !ValidFilename(filename) {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(s.root, bucket, filename))
}

// Exists reports whether bucket/filename is present on disk.
func (s *LocalStore) Exists(bucket, filename string) bool {
	if !ValidBucket(bucket) || !ValidFilename(filename) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.root, bucket, filename))
	return err == nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *LocalStore) Delete(storedPath string) error {
	bucket, filename, ok := SplitPath(storedPath)
	if !ok {
		return fmt.Errorf("invalid stored path %q", storedPath)
	}

	err := os.Remove(filepath.Join(s.root, bucket, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", storedPath, err)
	}

	observability.StorageOperations.WithLabelValues(bucket, "delete").Inc()
	return nil
}

// SplitPath splits a stored path of the form bucket/filename.
func SplitPath(storedPath string) (bucket, filename string, ok bool) {
	parts := strings.SplitN(storedPath, "/", 2)
	if len(parts) != 2 || !ValidBucket(parts[0]) || !ValidFilename(parts[1]) {
		return "", "", false
	}
	return parts[0], parts[1], true
}
