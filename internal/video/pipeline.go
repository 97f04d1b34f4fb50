package video

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
)

// Pipeline runs the ingestion sequence: persist upload, extract audio,
// transcribe, clean up. Every asset created inside one Ingest call is deleted
// before the call returns, whether it succeeds or fails.
type Pipeline struct {
	store       BlobStore
	extractor   Extractor
	transcriber Transcriber
	log         *slog.Logger
}

// NewPipeline wires a pipeline over the given store and external stages.
func NewPipeline(store BlobStore, extractor Extractor, transcriber Transcriber, log *slog.Logger) *Pipeline {
	return &Pipeline{store: store, extractor: extractor, transcriber: transcriber, log: log}
}

// Ingest transcribes the raw video bytes and returns the transcript text.
// Returns ErrEmptyUpload for an empty payload; extraction and transcription
// failures carry ErrTranscode and ErrTranscription respectively.
func (p *Pipeline) Ingest(ctx context.Context, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", ErrEmptyUpload
	}

	videoAsset, err := p.store.Put(KindVideo, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	defer p.cleanup(videoAsset.Name)

	audioAsset, err := p.extractor.Extract(ctx, videoAsset)
	if err != nil {
		return "", err
	}
	defer p.cleanup(audioAsset.Name)

	text, err := p.transcriber.Transcribe(ctx, audioAsset)
	if err != nil {
		return "", err
	}

	p.log.Debug("video transcribed",
		slog.String("video", videoAsset.Name),
		slog.String("audio", audioAsset.Name),
		slog.Int("transcript_len", len(text)))

	return text, nil
}

// cleanup deletes an intermediate asset; a missing file is fine.
func (p *Pipeline) cleanup(name string) {
	if err := p.store.Delete(name); err != nil {
		p.log.Warn("cleanup failed", slog.String("asset", name), slog.String("error", err.Error()))
	}
}
