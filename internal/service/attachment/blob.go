package attachment

import (
	"context"

	"github.com/minio/minio-go/v7"
)

// BlobStore is the external object-store collaborator. The core never
// uploads or downloads; it only signals deletion for object keys whose
// metadata rows were removed.
type BlobStore interface {
	Remove(ctx context.Context, objectKey string) error
}

type MinIOBlobStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOBlobStore(client *minio.Client, bucket string) *MinIOBlobStore {
	return &MinIOBlobStore{client: client, bucket: bucket}
}

func (s *MinIOBlobStore) Remove(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
