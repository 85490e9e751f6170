// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified, read-only interface for
// the operations the catalog reader needs: checking bucket existence, listing
// theme objects and streaming their contents. The abstraction supports both
// AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easy
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "catalog")
package storage
