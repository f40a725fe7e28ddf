package storage

import (
	"context"
	"crypto/md5" //nolint:gosec // etag derivation, not security
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by MemoryStore when an object does not exist.
var ErrNotFound = errors.New("object not found")

type memoryObject struct {
	data         []byte
	contentType  string
	metadata     map[string]string
	etag         string
	lastModified time.Time
}

// MemoryStore is an in-memory ObjectStore used by tests and local
// development without object storage credentials.
type MemoryStore struct {
	mu       sync.Mutex
	objects  map[string]memoryObject
	putFails int
	failErr  error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
	}
}

// FailPuts makes the next n Put calls fail with err.
func (m *MemoryStore) FailPuts(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putFails = n
	m.failErr = err
}

// Put stores an object, computing an etag from its content.
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putFails > 0 {
		m.putFails--
		return "", m.failErr
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	sum := md5.Sum(data) //nolint:gosec // etag derivation, not security
	obj := memoryObject{
		data:         stored,
		contentType:  contentType,
		metadata:     meta,
		etag:         hex.EncodeToString(sum[:]),
		lastModified: time.Now(),
	}
	m.objects[key] = obj
	return obj.etag, nil
}

// Stat returns object info or ErrNotFound.
func (m *MemoryStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ETag:         obj.etag,
		LastModified: obj.lastModified,
		ContentType:  obj.contentType,
		Metadata:     obj.metadata,
	}, nil
}

// Delete removes an object. Deleting a missing object is not an error,
// matching S3 semantics.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// List returns objects under a prefix in key order, up to limit.
func (m *MemoryStore) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	infos := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		obj := m.objects[key]
		infos = append(infos, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			ETag:         obj.etag,
			LastModified: obj.lastModified,
			ContentType:  obj.contentType,
			Metadata:     obj.metadata,
		})
	}
	return infos, nil
}
