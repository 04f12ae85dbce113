package restore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a backup file is wrapped on disk.
type Compression string

const (
	// CompressionAuto picks the codec from the file extension.
	CompressionAuto Compression = "auto"
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// ParseCompression validates a compression name. An empty name means auto.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(s)); c {
	case "":
		return CompressionAuto, nil
	case CompressionAuto, CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4:
		return c, nil
	default:
		return "", fmt.Errorf("unknown compression %q (want auto, none, gzip, zstd or lz4)", s)
	}
}

// DetectCompression maps a backup path to a codec by extension.
func DetectCompression(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(lower, ".zst"):
		return CompressionZstd
	case strings.HasSuffix(lower, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// OpenBackup opens the backup file at path and returns a reader over its
// decompressed contents. Closing the reader releases the file.
func OpenBackup(path string, compression Compression) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}

	if compression == CompressionAuto || compression == "" {
		compression = DetectCompression(path)
	}

	switch compression {
	case CompressionNone:
		return file, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &backupReader{Reader: gz, closers: []func() error{gz.Close, file.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		release := func() error {
			zr.Close()
			return nil
		}
		return &backupReader{Reader: zr, closers: []func() error{release, file.Close}}, nil
	case CompressionLZ4:
		return &backupReader{Reader: lz4.NewReader(file), closers: []func() error{file.Close}}, nil
	default:
		file.Close()
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}

// backupReader pairs a decompressor with the resources it reads from.
type backupReader struct {
	io.Reader
	closers []func() error
}

func (r *backupReader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// countingReader tracks the number of bytes handed to the client.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
