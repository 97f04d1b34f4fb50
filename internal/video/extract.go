package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Extractor derives an audio asset from a stored video asset.
type Extractor interface {
	Extract(ctx context.Context, videoAsset Asset) (Asset, error)
}

// FFmpegExtractor shells out to ffmpeg for a single fixed audio profile:
// 16-bit little-endian PCM samples in a WAV container.
type FFmpegExtractor struct {
	store *DiskStore
	bin   string
}

// NewFFmpegExtractor returns an extractor writing into store. If bin is empty,
// "ffmpeg" is resolved from PATH.
func NewFFmpegExtractor(store *DiskStore, bin string) *FFmpegExtractor {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegExtractor{store: store, bin: bin}
}

// Extract implements Extractor. On success exactly one new audio asset exists
// in the store; on failure any partial output is removed before returning.
func (e *FFmpegExtractor) Extract(ctx context.Context, videoAsset Asset) (Asset, error) {
	out := e.store.allocate(KindAudio)

	cmd := exec.CommandContext(ctx, e.bin,
		"-y", "-i", videoAsset.Path,
		"-acodec", "pcm_s16le",
		"-f", "wav",
		out.Path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(out.Path)
		if diag := strings.TrimSpace(stderr.String()); diag != "" {
			return Asset{}, fmt.Errorf("%w: %v: %s", ErrTranscode, err, diag)
		}
		return Asset{}, fmt.Errorf("%w: %v", ErrTranscode, err)
	}

	info, err := os.Stat(out.Path)
	if err != nil || info.Size() == 0 {
		os.Remove(out.Path)
		return Asset{}, fmt.Errorf("%w: transcoder produced no output", ErrTranscode)
	}

	out.Size = info.Size()
	return out, nil
}
