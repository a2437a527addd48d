// Package tts provides the client for the speech synthesis HTTP service that
// produces narration audio.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// API endpoints and paths.
const (
	apiSynthesize = "/v1/text:synthesize"
	apiHealth     = "/health"
)

// HTTP headers.
const (
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
	contentTypeMPEG     = "audio/mpeg"
)

const ssmlRoot = "<speak>"

// Static errors.
var (
	ErrTextEmpty       = errors.New("text cannot be empty")
	ErrVoiceEmpty      = errors.New("voice cannot be empty")
	ErrInvalidLanguage = errors.New("invalid language code")
	ErrEmptyAudio      = errors.New("received empty audio data")
	ErrContentType     = errors.New("unexpected content type")
)

// Error messages.
const (
	errFmtServiceErrorWithCode = "TTS service error (%s): %s (code: %s)"
	errFmtServiceNonOKStatus   = "TTS service returned non-OK status: %s, body: %s"
)

// HTTPClient talks to the speech synthesis service.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// SynthesizeRequest is the JSON payload of a synthesis request.
type SynthesizeRequest struct {
	// Input is plain text or an SSML document.
	Input string `json:"input"`

	// SSML reports whether Input is an SSML document.
	SSML bool `json:"ssml"`

	Voice string `json:"voice"`

	// Language is a BCP 47 tag such as "en-US".
	Language string `json:"language"`
}

// ErrorResponse is the structured error body returned by the service.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// NewHTTPClient creates a client for the service at baseURL, e.g.
// "http://localhost:8000". An empty apiKey sends no Authorization header.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CanonicalLanguage parses a BCP 47 language code and returns its canonical
// form.
func CanonicalLanguage(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w '%s': %w", ErrInvalidLanguage, code, err)
	}

	return tag.String(), nil
}

// Synthesize returns MP3 audio for text. Text starting with <speak> is sent
// as SSML.
func (c *HTTPClient) Synthesize(ctx context.Context, text, voiceID, languageCode string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextEmpty
	}

	if voiceID == "" {
		return nil, ErrVoiceEmpty
	}

	lang, err := CanonicalLanguage(languageCode)
	if err != nil {
		return nil, err
	}

	requestBody, err := json.Marshal(SynthesizeRequest{
		Input:    text,
		SSML:     strings.HasPrefix(strings.TrimSpace(text), ssmlRoot),
		Voice:    voiceID,
		Language: lang,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiSynthesize,
		bytes.NewReader(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeMPEG)

	if c.apiKey != "" {
		httpReq.Header.Set(headerAuthorization, "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to TTS service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get(headerContentType))
	if err != nil || mediaType != contentTypeMPEG {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrContentType, contentTypeMPEG,
			resp.Header.Get(headerContentType))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudio
	}

	return audioData, nil
}

// HealthCheck verifies that the service is reachable and reports healthy.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiHealth, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(
			"health check failed for service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// parseErrorResponse decodes a structured JSON error, falling back to the
// raw body.
func (c *HTTPClient) parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errorResp ErrorResponse

	err := json.Unmarshal(body, &errorResp)
	if err == nil && errorResp.Detail != "" {
		return fmt.Errorf(errFmtServiceErrorWithCode,
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	return fmt.Errorf(
		errFmtServiceNonOKStatus,
		resp.Status,
		string(body),
	)
}
