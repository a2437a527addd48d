package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVoice    = "en-US-Standard-C"
	testLanguage = "en-us"
	testMP3Frame = "ID3\x04\x00\x00\x00\x00\x00\x00\xff\xfb"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPClient(server.URL+"/", "secret", 5*time.Second)
}

func TestHTTPClient_Synthesize_Success(t *testing.T) {
	t.Parallel()

	var received SynthesizeRequest

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, apiSynthesize, r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))
		assert.Equal(t, contentTypeMPEG, r.Header.Get(headerAccept))
		assert.Equal(t, "Bearer secret", r.Header.Get(headerAuthorization))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set(headerContentType, contentTypeMPEG)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testMP3Frame))
	})

	audio, err := client.Synthesize(context.Background(), "Hello, world!", testVoice, testLanguage)
	require.NoError(t, err)

	assert.Equal(t, []byte(testMP3Frame), audio)
	assert.Equal(t, "Hello, world!", received.Input)
	assert.False(t, received.SSML)
	assert.Equal(t, testVoice, received.Voice)
	assert.Equal(t, "en-US", received.Language)
}

func TestHTTPClient_Synthesize_DetectsSSML(t *testing.T) {
	t.Parallel()

	var received SynthesizeRequest

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set(headerContentType, "audio/mpeg; charset=binary")
		_, _ = w.Write([]byte(testMP3Frame))
	})

	_, err := client.Synthesize(context.Background(), "  <speak>Hi</speak>", testVoice, testLanguage)
	require.NoError(t, err)
	assert.True(t, received.SSML)
}

func TestHTTPClient_Synthesize_InputValidation(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient("http://127.0.0.1:1", "", time.Second)

	_, err := client.Synthesize(context.Background(), "   ", testVoice, testLanguage)
	require.ErrorIs(t, err, ErrTextEmpty)

	_, err = client.Synthesize(context.Background(), "text", "", testLanguage)
	require.ErrorIs(t, err, ErrVoiceEmpty)

	_, err = client.Synthesize(context.Background(), "text", testVoice, "!!")
	require.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestHTTPClient_Synthesize_StructuredError(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"unknown voice","error_code":"INVALID_VOICE"}`))
	})

	_, err := client.Synthesize(context.Background(), "text", testVoice, testLanguage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown voice")
	assert.Contains(t, err.Error(), "INVALID_VOICE")
}

func TestHTTPClient_Synthesize_RawError(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.Synthesize(context.Background(), "text", testVoice, testLanguage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestHTTPClient_Synthesize_BadResponses(t *testing.T) {
	t.Parallel()

	wrongType := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, "audio/wav")
		_, _ = w.Write([]byte("RIFF"))
	})

	_, err := wrongType.Synthesize(context.Background(), "text", testVoice, testLanguage)
	require.ErrorIs(t, err, ErrContentType)

	empty := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeMPEG)
		w.WriteHeader(http.StatusOK)
	})

	_, err = empty.Synthesize(context.Background(), "text", testVoice, testLanguage)
	require.ErrorIs(t, err, ErrEmptyAudio)
}

func TestHTTPClient_HealthCheck(t *testing.T) {
	t.Parallel()

	healthy := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, apiHealth, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, healthy.HealthCheck(context.Background()))

	unhealthy := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.Error(t, unhealthy.HealthCheck(context.Background()))

	unreachable := NewHTTPClient("http://127.0.0.1:1", "", 100*time.Millisecond)
	require.Error(t, unreachable.HealthCheck(context.Background()))
}

func TestCanonicalLanguage(t *testing.T) {
	t.Parallel()

	lang, err := CanonicalLanguage("EN-gb")
	require.NoError(t, err)
	assert.Equal(t, "en-GB", lang)
}
