// Package objectstore keeps presentation decks in a NATS JetStream object
// store bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// ErrObjectNotFound is returned when a key is not present in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// NatsObjectStore implements core.ObjectStore on a JetStream object store.
type NatsObjectStore struct {
	bucket string
	store  jetstream.ObjectStore
}

// New creates the bucket when it does not exist and binds to it otherwise.
func New(ctx context.Context, js jetstream.JetStream, bucketName string) (*NatsObjectStore, error) {
	store, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Presentation decks for the %s bucket.", bucketName),
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store bucket '%s': %w", bucketName, err)
	}

	return &NatsObjectStore{bucket: bucketName, store: store}, nil
}

// Download retrieves an object from the bucket.
func (n *NatsObjectStore) Download(ctx context.Context, key string) ([]byte, error) {
	data, err := n.store.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, fmt.Errorf("object '%s' in bucket '%s': %w", key, n.bucket, ErrObjectNotFound)
		}

		return nil, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", key, n.bucket, err)
	}

	return data, nil
}

// Upload stores data under key, replacing any previous object.
func (n *NatsObjectStore) Upload(ctx context.Context, key string, data []byte) error {
	_, err := n.store.Put(ctx, jetstream.ObjectMeta{
		Name:        key,
		Description: "presentation deck",
	}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to put object '%s' to bucket '%s': %w", key, n.bucket, err)
	}

	return nil
}
