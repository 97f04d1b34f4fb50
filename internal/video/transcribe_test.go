package video

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestAudio(t *testing.T, data []byte) Asset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio_test.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return Asset{Name: "audio_test.wav", Path: path, Size: int64(len(data)), Kind: KindAudio}
}

func TestWhisperClient_Transcribe(t *testing.T) {
	audio := []byte("RIFF-wav-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		var req struct {
			Audio string `json:"audio"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Audio != base64.StdEncoding.EncodeToString(audio) {
			t.Error("request audio is not the base64 payload")
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "hello"})
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL, "test-key", time.Second)
	text, err := c.Transcribe(context.Background(), writeTestAudio(t, audio))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want %q", text, "hello")
	}
}

func TestWhisperClient_Transcribe_http_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL, "test-key", time.Second)
	_, err := c.Transcribe(context.Background(), writeTestAudio(t, []byte("x")))
	if !errors.Is(err, ErrTranscription) {
		t.Errorf("expected ErrTranscription, got %v", err)
	}
}

func TestWhisperClient_Transcribe_missing_text_field(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL, "test-key", time.Second)
	_, err := c.Transcribe(context.Background(), writeTestAudio(t, []byte("x")))
	if !errors.Is(err, ErrTranscription) {
		t.Errorf("expected ErrTranscription, got %v", err)
	}
}

func TestWhisperClient_Transcribe_malformed_body(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL, "test-key", time.Second)
	_, err := c.Transcribe(context.Background(), writeTestAudio(t, []byte("x")))
	if !errors.Is(err, ErrTranscription) {
		t.Errorf("expected ErrTranscription, got %v", err)
	}
}

func TestWhisperClient_Transcribe_timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewWhisperClient(srv.URL, "test-key", 50*time.Millisecond)
	start := time.Now()
	_, err := c.Transcribe(context.Background(), writeTestAudio(t, []byte("x")))
	if !errors.Is(err, ErrTranscription) {
		t.Errorf("expected ErrTranscription on deadline, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("deadline did not bound the call")
	}
}

func TestWhisperClient_Transcribe_missing_audio_file(t *testing.T) {
	c := NewWhisperClient("http://localhost:0", "test-key", time.Second)
	missing := Asset{Name: "audio_gone.wav", Path: filepath.Join(t.TempDir(), "audio_gone.wav"), Kind: KindAudio}
	if _, err := c.Transcribe(context.Background(), missing); err == nil {
		t.Error("expected error for missing audio asset")
	}
}
