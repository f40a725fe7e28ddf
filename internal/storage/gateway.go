package storage

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/kozaktomas/face-finder/internal/validate"
)

// ObjectStore is the capability the gateway is built on: an S3/R2
// compatible object store.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (etag string, err error)
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
	ContentType  string
	Metadata     map[string]string
}

// UploadResult is the outcome of an upload through the gateway.
type UploadResult struct {
	Success    bool
	StorageKey string
	URL        string
	Size       int64
	ETag       string
	Error      string
}

// FileInfo describes a stored file, or its absence.
type FileInfo struct {
	Exists       bool
	Size         int64
	ETag         string
	LastModified time.Time
	ContentType  string
	Metadata     map[string]string
}

// Stats summarizes the objects under a prefix.
type Stats struct {
	TotalFiles  int
	TotalSize   int64
	LastChecked time.Time
}

// Gateway wraps an object store with validation, bounded retry on
// uploads, and fail-soft read paths.
type Gateway struct {
	store     ObjectStore
	publicURL string
	retry     RetryPolicy
}

// NewGateway creates a gateway over the given store. publicURL is the
// base under which uploaded objects are publicly reachable; when empty a
// local development URL is generated. A retry policy with fewer than
// one attempt is normalized to a single attempt, matching RetryPolicy.Do.
func NewGateway(store ObjectStore, publicURL string, retry RetryPolicy) *Gateway {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Gateway{
		store:     store,
		publicURL: publicURL,
		retry:     retry,
	}
}

// UploadFile stores data under key with bounded retry. Validation
// failures and exhausted retries yield Success=false with the error
// message; no partial results are returned.
func (g *Gateway) UploadFile(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) UploadResult {
	if !IsValidStorageKey(key) {
		return UploadResult{Error: "invalid storage key format"}
	}
	if !validate.IsValidImageType(contentType) {
		return UploadResult{Error: fmt.Sprintf("unsupported content type: %s", contentType)}
	}
	if len(data) == 0 {
		return UploadResult{Error: "file buffer is empty"}
	}

	meta := map[string]string{
		"uploadedAt":          time.Now().UTC().Format(time.RFC3339),
		"originalContentType": contentType,
	}
	for k, v := range metadata {
		meta[k] = v
	}

	var etag string
	attempt := 0
	attempts, err := g.retry.Do(ctx, func() error {
		attempt++
		log.Printf("uploading %s (attempt %d/%d)", key, attempt, g.retry.MaxAttempts)
		var putErr error
		etag, putErr = g.store.Put(ctx, key, data, contentType, meta)
		return putErr
	})
	if err != nil {
		log.Printf("upload of %s failed: %v", key, err)
		return UploadResult{
			Error: fmt.Sprintf("failed to upload after %d attempts: %v", attempts, err),
		}
	}

	log.Printf("uploaded %s (%d bytes)", key, len(data))
	return UploadResult{
		Success:    true,
		StorageKey: key,
		URL:        g.FileURL(key),
		Size:       int64(len(data)),
		ETag:       etag,
	}
}

// FileURL derives the public access URL for a storage key. The URL is
// deterministic; signed or expiring URLs are not used.
func (g *Gateway) FileURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	escaped := strings.Join(segments, "/")

	if g.publicURL == "" {
		return "http://localhost:8787/files/" + escaped
	}
	return g.publicURL + "/" + escaped
}

// GetFileInfo looks up a stored file. Failures are treated as absence;
// this path is non-critical and never propagates store errors.
func (g *Gateway) GetFileInfo(ctx context.Context, key string) FileInfo {
	if !IsValidStorageKey(key) {
		return FileInfo{}
	}

	info, err := g.store.Stat(ctx, key)
	if err != nil || info == nil {
		return FileInfo{}
	}

	return FileInfo{
		Exists:       true,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
		Metadata:     info.Metadata,
	}
}

// DeleteFile removes a stored file. Returns false on any failure
// instead of propagating the error.
func (g *Gateway) DeleteFile(ctx context.Context, key string) bool {
	if !IsValidStorageKey(key) {
		return false
	}
	if err := g.store.Delete(ctx, key); err != nil {
		log.Printf("failed to delete %s: %v", key, err)
		return false
	}
	return true
}

// ListFiles lists objects under a prefix. Returns an empty list on any
// failure.
func (g *Gateway) ListFiles(ctx context.Context, prefix string, limit int) []ObjectInfo {
	objects, err := g.store.List(ctx, prefix, limit)
	if err != nil {
		log.Printf("failed to list %q: %v", prefix, err)
		return nil
	}
	return objects
}

// CheckConnection probes the store with a one-item listing.
func (g *Gateway) CheckConnection(ctx context.Context) bool {
	_, err := g.store.List(ctx, "", 1)
	return err == nil
}

// GetStats summarizes up to the first 1000 objects under a prefix.
func (g *Gateway) GetStats(ctx context.Context, prefix string) Stats {
	objects := g.ListFiles(ctx, prefix, 1000)

	stats := Stats{LastChecked: time.Now()}
	for _, obj := range objects {
		stats.TotalFiles++
		stats.TotalSize += obj.Size
	}
	return stats
}
