package video

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore is the persistence abstraction for media assets.
// Implementations can be disk-backed or in-memory; the pipeline and handlers
// use BlobStore for all reads, writes, and deletes.
type BlobStore interface {
	// Put writes the reader's bytes to a freshly allocated unique name and
	// returns the stored asset.
	Put(kind Kind, r io.Reader) (Asset, error)

	// Open returns a sequential reader over bytes [start, end] of the named
	// asset. The caller must close it. Returns ErrNotFound if the asset is gone.
	Open(name string, start, end int64) (io.ReadCloser, error)

	// Stat returns the asset descriptor for the given name, or ErrNotFound.
	Stat(name string) (Asset, error)

	// Delete removes the named asset. A missing asset is not an error.
	Delete(name string) error
}

// DiskStore is a filesystem-backed implementation of BlobStore.
// Every asset lives as a single file directly under the root directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a store over it.
func NewDiskStore(root string) (*DiskStore, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// newAssetName allocates a name that cannot repeat within or across processes:
// kind prefix, unix timestamp for operator-friendly ordering, and a uuid
// suffix carrying the uniqueness guarantee.
func newAssetName(kind Kind) string {
	return fmt.Sprintf("%s_%d_%s%s", kind, time.Now().Unix(), uuid.NewString(), kind.ext())
}

// allocate reserves a fresh asset descriptor without touching the filesystem.
func (s *DiskStore) allocate(kind Kind) Asset {
	name := newAssetName(kind)
	return Asset{Name: name, Path: filepath.Join(s.root, name), Kind: kind}
}

// Put implements BlobStore.Put.
func (s *DiskStore) Put(kind Kind, r io.Reader) (Asset, error) {
	asset := s.allocate(kind)

	f, err := os.OpenFile(asset.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Asset{}, fmt.Errorf("creating asset %s: %w", asset.Name, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(asset.Path)
		return Asset{}, fmt.Errorf("writing asset %s: %w", asset.Name, err)
	}

	asset.Size = n
	return asset, nil
}

// Open implements BlobStore.Open.
func (s *DiskStore) Open(name string, start, end int64) (io.ReadCloser, error) {
	path, err := s.assetPath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("asset %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("opening asset %q: %w", name, err)
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seeking asset %q to %d: %w", name, start, err)
	}

	return &boundedReader{Reader: io.LimitReader(f, end-start+1), f: f}, nil
}

// Stat implements BlobStore.Stat.
func (s *DiskStore) Stat(name string) (Asset, error) {
	path, err := s.assetPath(name)
	if err != nil {
		return Asset{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Asset{}, fmt.Errorf("asset %q: %w", name, ErrNotFound)
		}
		return Asset{}, fmt.Errorf("stat asset %q: %w", name, err)
	}

	return Asset{Name: name, Path: path, Size: info.Size(), Kind: kindFromName(name)}, nil
}

// Delete implements BlobStore.Delete. Deleting a missing asset is a no-op so
// cleanup paths stay idempotent.
func (s *DiskStore) Delete(name string) error {
	path, err := s.assetPath(name)
	if err != nil {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting asset %q: %w", name, err)
	}
	return nil
}

// AssetCount returns the number of stored assets. Used for metrics.
func (s *DiskStore) AssetCount() int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}

// assetPath maps an asset name to its path. Names containing path separators
// or traversal sequences never match a stored asset.
func (s *DiskStore) assetPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid asset name %q: %w", name, ErrNotFound)
	}
	return filepath.Join(s.root, name), nil
}

func kindFromName(name string) Kind {
	if strings.HasSuffix(name, KindAudio.ext()) {
		return KindAudio
	}
	return KindVideo
}

// boundedReader is a read-only view over a byte window of an open file.
type boundedReader struct {
	io.Reader
	f *os.File
}

func (b *boundedReader) Close() error {
	return b.f.Close()
}
