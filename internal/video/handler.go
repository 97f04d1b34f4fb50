package video

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"video-ingest/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const videoContentType = "video/mp4"

// Handler exposes the upload and streaming HTTP endpoints using go-chi.
type Handler struct {
	pipeline *Pipeline
	store    BlobStore
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewHandler returns a Handler over the given Pipeline, BlobStore, Logger, and
// optional Metrics. Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(pipeline *Pipeline, store BlobStore, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{pipeline: pipeline, store: store, log: log, metrics: m}
}

// Upload handles POST /upload. Body: raw video bytes; the transcript is
// embedded in a plain-text success message.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Debug("reading upload body", slog.String("error", err.Error()))
		http.Error(w, "invalid upload body", http.StatusBadRequest)
		return
	}

	text, err := h.pipeline.Ingest(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyUpload):
			http.Error(w, "no video file uploaded", http.StatusBadRequest)
		case errors.Is(err, ErrTranscode), errors.Is(err, ErrTranscription):
			h.log.Error("ingest failed", slog.String("error", err.Error()))
			http.Error(w, "error transcribing video", http.StatusInternalServerError)
		default:
			h.log.Error("upload failed", slog.String("error", err.Error()))
			http.Error(w, "error handling video upload", http.StatusInternalServerError)
		}
		return
	}

	h.log.Info("video transcribed", slog.Int("bytes", len(raw)), slog.Int("transcript_len", len(text)))
	if h.metrics != nil {
		h.metrics.IncUploads()
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Video uploaded and saved successfully. Transcription: %s", text)
}

// SaveVideo handles POST /videos. It stores the raw body as a servable asset
// and returns its generated name. Stored videos are never touched by the
// ingestion pipeline's cleanup.
func (h *Handler) SaveVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	asset, err := h.store.Put(KindVideo, r.Body)
	if err != nil {
		h.log.Error("store video failed", slog.String("error", err.Error()))
		http.Error(w, "error saving video", http.StatusInternalServerError)
		return
	}
	if asset.Size == 0 {
		_ = h.store.Delete(asset.Name)
		http.Error(w, "no video file uploaded", http.StatusBadRequest)
		return
	}

	h.log.Info("video stored",
		slog.String("asset", asset.Name),
		slog.Int64("size", asset.Size))
	if h.metrics != nil {
		h.metrics.IncVideosStored()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"fileName": asset.Name})
}

// Stream handles GET /stream/{fileName}. A fully-bounded Range header is
// mandatory; whole-file transfer is not supported.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := chi.URLParam(r, "fileName")
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	asset, err := h.store.Stat(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "video not found", http.StatusNotFound)
			return
		}
		h.log.Error("stat failed", slog.String("asset", name), slog.String("error", err.Error()))
		http.Error(w, "error streaming video", http.StatusInternalServerError)
		return
	}

	spec, err := ParseRange(r.Header.Get("Range"), asset.Size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", asset.Size))
		if errors.Is(err, ErrRangeRequired) {
			http.Error(w, "range header needed", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		h.log.Debug("bad range", slog.String("asset", name), slog.String("error", err.Error()))
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	rc, err := h.store.Open(name, spec.Start, spec.End)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "video not found", http.StatusNotFound)
			return
		}
		h.log.Error("open failed", slog.String("asset", name), slog.String("error", err.Error()))
		http.Error(w, "error streaming video", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Range", spec.ContentRange())
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(spec.Length(), 10))
	w.Header().Set("Content-Type", videoContentType)
	w.WriteHeader(http.StatusPartialContent)

	n, err := io.Copy(w, rc)
	if err != nil || n != spec.Length() {
		h.log.Error("stream aborted",
			slog.String("asset", name),
			slog.Int64("sent", n),
			slog.Int64("want", spec.Length()))
		// The 206 status line is already out; drop the connection rather than
		// deliver a body shorter than the declared Content-Length.
		panic(http.ErrAbortHandler)
	}

	if h.metrics != nil {
		h.metrics.IncStreamRequests()
		h.metrics.AddBytesStreamed(n)
	}
}
