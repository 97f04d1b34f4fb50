package video

import "errors"

// Kind classifies an asset as a video upload or an extracted audio track.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// ext returns the fixed file extension for the kind.
func (k Kind) ext() string {
	if k == KindAudio {
		return ".wav"
	}
	return ".mp4"
}

// Asset is a named file-backed byte blob managed by a BlobStore.
type Asset struct {
	Name string
	Path string
	Size int64
	Kind Kind
}

var (
	// ErrEmptyUpload is returned when an upload body contains no bytes.
	ErrEmptyUpload = errors.New("no video data provided")

	// ErrNotFound is returned when a named asset does not exist in the store.
	ErrNotFound = errors.New("asset not found")

	// ErrTranscode is returned when audio extraction fails or produces no output.
	ErrTranscode = errors.New("audio extraction failed")

	// ErrTranscription is returned when the transcription call fails, times out,
	// or returns a response without text.
	ErrTranscription = errors.New("transcription failed")

	// ErrRangeRequired is returned when a stream request carries no Range header.
	ErrRangeRequired = errors.New("range header required")

	// ErrRangeNotSatisfiable is returned when a Range header is malformed or
	// falls outside the asset's bounds.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)
