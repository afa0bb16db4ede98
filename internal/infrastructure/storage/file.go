package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const (
	plainExt      = ".json"
	compressedExt = ".json.zst"
)

// FileStore writes one file per namespace under a directory. Writes go to a
// temp file first and are renamed into place, so a crash never leaves a
// half-written snapshot behind.
type FileStore struct {
	dir      string
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// NewFileStore creates the directory if needed. With compress set, snapshots
// are written zstd-compressed; both encodings are always readable.
func NewFileStore(dir string, compress bool) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &FileStore{
		dir:      dir,
		compress: compress,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

func (s *FileStore) Load(_ context.Context, namespace string) ([]byte, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	// Prefer the encoding we write; fall back to the other one so toggling
	// STORAGE_COMPRESS does not lose state.
	order := []bool{s.compress, !s.compress}
	for _, compressed := range order {
		data, err := os.ReadFile(s.path(namespace, compressed))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", namespace, err)
		}
		if !compressed {
			return data, nil
		}
		plain, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", namespace, err)
		}
		return plain, nil
	}
	return nil, ErrNotFound
}

func (s *FileStore) Save(_ context.Context, namespace string, data []byte) error {
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}

	payload := data
	if s.compress {
		payload = s.encoder.EncodeAll(data, nil)
	}

	tmp, err := os.CreateTemp(s.dir, namespace+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", namespace, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", namespace, err)
	}
	if err := os.Rename(tmpName, s.path(namespace, s.compress)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit %s: %w", namespace, err)
	}

	// Drop the stale copy in the other encoding.
	_ = os.Remove(s.path(namespace, !s.compress))
	return nil
}

func (s *FileStore) Delete(_ context.Context, namespace string) error {
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}
	for _, compressed := range []bool{false, true} {
		if err := os.Remove(s.path(namespace, compressed)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", namespace, err)
		}
	}
	return nil
}

func (s *FileStore) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}

func (s *FileStore) path(namespace string, compressed bool) string {
	if compressed {
		return filepath.Join(s.dir, namespace+compressedExt)
	}
	return filepath.Join(s.dir, namespace+plainExt)
}
