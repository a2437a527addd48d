package objectstore_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/slide-voice/internal/objectstore"
)

// startTestServer starts an in-memory NATS server with JetStream enabled.
func startTestServer(t *testing.T) (*server.Server, jetstream.JetStream) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)
	t.Cleanup(natsServer.Shutdown)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)
	t.Cleanup(natsConnection.Close)

	js, err := jetstream.New(natsConnection)
	require.NoError(t, err)

	return natsServer, js
}

func TestNatsObjectStore_UploadDownload(t *testing.T) {
	t.Parallel()

	_, js := startTestServer(t)
	ctx := context.Background()

	store, err := objectstore.New(ctx, js, "test-decks")
	require.NoError(t, err)

	deck := []byte("PK\x03\x04 not really a deck")
	require.NoError(t, store.Upload(ctx, "decks/input.pptx", deck))

	downloaded, err := store.Download(ctx, "decks/input.pptx")
	require.NoError(t, err)
	require.Equal(t, deck, downloaded)

	require.NoError(t, store.Upload(ctx, "decks/input.pptx", []byte("replaced")))

	downloaded, err = store.Download(ctx, "decks/input.pptx")
	require.NoError(t, err)
	require.Equal(t, []byte("replaced"), downloaded)
}

func TestNatsObjectStore_BindsExistingBucket(t *testing.T) {
	t.Parallel()

	_, js := startTestServer(t)
	ctx := context.Background()

	first, err := objectstore.New(ctx, js, "shared")
	require.NoError(t, err)
	require.NoError(t, first.Upload(ctx, "a.pptx", []byte("a")))

	second, err := objectstore.New(ctx, js, "shared")
	require.NoError(t, err)

	data, err := second.Download(ctx, "a.pptx")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), data)
}

func TestNatsObjectStore_MissingObject(t *testing.T) {
	t.Parallel()

	_, js := startTestServer(t)
	ctx := context.Background()

	store, err := objectstore.New(ctx, js, "empty")
	require.NoError(t, err)

	_, err = store.Download(ctx, "missing.pptx")
	require.ErrorIs(t, err, objectstore.ErrObjectNotFound)
}
