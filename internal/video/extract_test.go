package video

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeFakeTranscoder installs a script that stands in for ffmpeg. The real
// argument order is: -y -i <in> -acodec pcm_s16le -f wav <out>, so $3 is the
// input path and $8 the output path.
func writeFakeTranscoder(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake transcoder script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func putTestVideo(t *testing.T, store *DiskStore) Asset {
	t.Helper()
	asset, err := store.Put(KindVideo, bytes.NewReader([]byte("fake-video-bytes")))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	return asset
}

func TestFFmpegExtractor_Extract(t *testing.T) {
	store, _ := newTestStore(t)
	videoAsset := putTestVideo(t, store)

	bin := writeFakeTranscoder(t, `cp "$3" "$8"`)
	ex := NewFFmpegExtractor(store, bin)

	audioAsset, err := ex.Extract(context.Background(), videoAsset)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if audioAsset.Kind != KindAudio {
		t.Errorf("kind = %q, want %q", audioAsset.Kind, KindAudio)
	}
	if audioAsset.Size == 0 {
		t.Error("expected non-empty audio asset")
	}
	if _, err := store.Stat(audioAsset.Name); err != nil {
		t.Errorf("audio asset not in store: %v", err)
	}
}

func TestFFmpegExtractor_Extract_tool_failure(t *testing.T) {
	store, dir := newTestStore(t)
	videoAsset := putTestVideo(t, store)

	bin := writeFakeTranscoder(t, `echo "moov atom not found" >&2; exit 1`)
	ex := NewFFmpegExtractor(store, bin)

	_, err := ex.Extract(context.Background(), videoAsset)
	if !errors.Is(err, ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
	// The diagnostic from the tool must travel with the error.
	if got := err.Error(); !bytes.Contains([]byte(got), []byte("moov atom not found")) {
		t.Errorf("error lacks tool diagnostic: %s", got)
	}
	// Only the source video may remain; no partial audio output.
	if n := residualFiles(t, dir); n != 1 {
		t.Errorf("expected only the source video on disk, got %d files", n)
	}
}

func TestFFmpegExtractor_Extract_empty_output_is_failure(t *testing.T) {
	store, dir := newTestStore(t)
	videoAsset := putTestVideo(t, store)

	bin := writeFakeTranscoder(t, `: > "$8"`)
	ex := NewFFmpegExtractor(store, bin)

	_, err := ex.Extract(context.Background(), videoAsset)
	if !errors.Is(err, ErrTranscode) {
		t.Fatalf("expected ErrTranscode for empty output, got %v", err)
	}
	if n := residualFiles(t, dir); n != 1 {
		t.Errorf("expected empty output removed, got %d files", n)
	}
}

func TestFFmpegExtractor_Extract_missing_binary(t *testing.T) {
	store, dir := newTestStore(t)
	videoAsset := putTestVideo(t, store)

	ex := NewFFmpegExtractor(store, filepath.Join(t.TempDir(), "no-such-ffmpeg"))

	_, err := ex.Extract(context.Background(), videoAsset)
	if !errors.Is(err, ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
	if n := residualFiles(t, dir); n != 1 {
		t.Errorf("expected no partial output, got %d files", n)
	}
}

func TestFFmpegExtractor_Extract_cancelled(t *testing.T) {
	store, _ := newTestStore(t)
	videoAsset := putTestVideo(t, store)

	bin := writeFakeTranscoder(t, `sleep 10; cp "$3" "$8"`)
	ex := NewFFmpegExtractor(store, bin)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ex.Extract(ctx, videoAsset); !errors.Is(err, ErrTranscode) {
		t.Errorf("expected ErrTranscode on cancellation, got %v", err)
	}
}
