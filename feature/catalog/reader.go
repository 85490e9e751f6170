package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"profile-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// Reader provides read access to the content catalog.
type Reader interface {
	// ListThemes returns the theme ids in catalog order.
	ListThemes(ctx context.Context) ([]string, error)
	// ListLevels returns the ordered level ids of a theme.
	ListLevels(ctx context.Context, themeID string) ([]string, error)
	// Snapshot returns a point-in-time view of the whole catalog.
	Snapshot(ctx context.Context) (Snapshot, error)
}

// themeDocument is the stored shape of a single theme object.
type themeDocument struct {
	Levels []string `json:"levels"`
}

// StorageReader reads the catalog from object storage, one JSON object per
// theme under the configured prefix.
type StorageReader struct {
	client storage.Client
	bucket string
	prefix string
}

// NewStorageReader creates a catalog reader over the given bucket.
func NewStorageReader(client storage.Client, bucket, prefix string) *StorageReader {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &StorageReader{client: client, bucket: bucket, prefix: prefix}
}

// ListThemes lists theme object keys under the prefix and strips them down to ids.
func (r *StorageReader) ListThemes(ctx context.Context) ([]string, error) {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check catalog bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("catalog bucket %s does not exist", r.bucket)
	}

	var ids []string
	for obj := range r.client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{
		Prefix:    r.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list catalog objects: %w", obj.Err)
		}

		name := strings.TrimPrefix(obj.Key, r.prefix)
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	// Listing order is already lexical for S3-compatible backends; sorting
	// keeps the order contract independent of the provider.
	sort.Strings(ids)

	return ids, nil
}

// ListLevels reads a single theme document and returns its ordered level ids.
func (r *StorageReader) ListLevels(ctx context.Context, themeID string) ([]string, error) {
	objectName := r.prefix + themeID + ".json"

	reader, err := r.client.GetObject(ctx, r.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get theme %s: %w", themeID, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme %s: %w", themeID, err)
	}

	var doc themeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", themeID, err)
	}

	return doc.Levels, nil
}

// Snapshot assembles the full catalog view from the theme listing.
func (r *StorageReader) Snapshot(ctx context.Context) (Snapshot, error) {
	ids, err := r.ListThemes(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Themes: make([]Theme, 0, len(ids))}
	for _, id := range ids {
		levels, err := r.ListLevels(ctx, id)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Themes = append(snap.Themes, Theme{ID: id, Levels: levels})
	}

	return snap, nil
}
