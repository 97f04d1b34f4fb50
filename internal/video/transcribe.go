package video

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultTranscribeTimeout bounds the transcription call when no explicit
// deadline is configured.
const DefaultTranscribeTimeout = 60 * time.Second

// Transcriber turns an audio asset into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioAsset Asset) (string, error)
}

// WhisperClient submits base64-encoded audio to a speech-to-text HTTP API
// authenticated with a bearer credential.
type WhisperClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewWhisperClient returns a client for the given endpoint. The timeout bounds
// each Transcribe call; if it is not positive, DefaultTranscribeTimeout is used.
func NewWhisperClient(endpoint, apiKey string, timeout time.Duration) *WhisperClient {
	if timeout <= 0 {
		timeout = DefaultTranscribeTimeout
	}
	return &WhisperClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type transcribeRequest struct {
	Audio string `json:"audio"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// Transcribe implements Transcriber.
func (c *WhisperClient) Transcribe(ctx context.Context, audioAsset Asset) (string, error) {
	audio, err := os.ReadFile(audioAsset.Path)
	if err != nil {
		return "", fmt.Errorf("reading audio asset %q: %w", audioAsset.Name, err)
	}

	body, err := json.Marshal(transcribeRequest{
		Audio: base64.StdEncoding.EncodeToString(audio),
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Covers network failures and the client deadline.
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: http %d: %s", ErrTranscription, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrTranscription, err)
	}
	if out.Text == "" {
		return "", fmt.Errorf("%w: response missing text", ErrTranscription)
	}

	return out.Text, nil
}
