package course

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mreiter/scormpack/pkg/errors"
)

// Limits bounds resource usage during archive extraction. Zip headers can
// lie about uncompressed sizes, so the per-file limit is enforced both on
// the declared size and on the bytes actually written.
type Limits struct {
	// MaxFileBytes is the maximum uncompressed size of a single entry.
	MaxFileBytes int64
	// MaxTotalBytes is the maximum uncompressed size of the whole archive.
	MaxTotalBytes int64
	// MaxEntries is the maximum number of entries in the archive.
	MaxEntries int
}

// DefaultLimits are the extraction guards applied when a field is left zero.
var DefaultLimits = Limits{
	MaxFileBytes:  64 << 20,  // 64 MiB
	MaxTotalBytes: 256 << 20, // 256 MiB
	MaxEntries:    10000,
}

// normalized fills zero fields with defaults.
func (l Limits) normalized() Limits {
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = DefaultLimits.MaxFileBytes
	}
	if l.MaxTotalBytes <= 0 {
		l.MaxTotalBytes = DefaultLimits.MaxTotalBytes
	}
	if l.MaxEntries <= 0 {
		l.MaxEntries = DefaultLimits.MaxEntries
	}
	return l
}

// extract decompresses a zip blob into root, preserving the internal
// relative path structure. Every entry name is validated against traversal
// and the destination is re-checked to stay under root. Symlink entries are
// rejected outright.
func extract(root string, blob []byte, limits Limits) error {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArchive, err, "uploaded file is not a valid ZIP")
	}

	entries := 0
	var total int64
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, "/")
		if f.FileInfo().IsDir() {
			continue
		}

		entries++
		if entries > limits.MaxEntries {
			return errors.New(errors.ErrCodeLimitExceeded, "archive has too many entries (max %d)", limits.MaxEntries)
		}

		if f.Mode()&os.ModeSymlink != 0 {
			return errors.New(errors.ErrCodeInvalidPath, "archive contains symlink entry: %s", f.Name)
		}

		if err := errors.ValidateRelPath(name); err != nil {
			return err
		}

		declared := int64(f.UncompressedSize64) //nolint:gosec // bounded by limit check below
		if declared > limits.MaxFileBytes {
			return errors.New(errors.ErrCodeLimitExceeded, "entry %s exceeds the per-file limit (%d bytes)", name, limits.MaxFileBytes)
		}

		dest := filepath.Join(root, filepath.FromSlash(name))

		// Containment re-check on the joined path. ValidateRelPath already
		// rejects ".." segments, this guards against join surprises.
		rel, err := filepath.Rel(root, dest)
		if err != nil || strings.HasPrefix(rel, "..") {
			return errors.New(errors.ErrCodeInvalidPath, "invalid path in ZIP: %s", f.Name)
		}

		written, err := extractEntry(f, dest, limits.MaxFileBytes)
		if err != nil {
			return err
		}

		total += written
		if total > limits.MaxTotalBytes {
			return errors.New(errors.ErrCodeLimitExceeded, "archive exceeds the total size limit (%d bytes)", limits.MaxTotalBytes)
		}
	}

	return nil
}

// extractEntry copies a single zip entry to dest and returns the bytes
// written. Writing stops at maxBytes+1 so oversized entries are detected
// even when their header under-reports the size.
func extractEntry(f *zip.File, dest string, maxBytes int64) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidArchive, err, "open archive entry %s", f.Name)
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "create directory for %s", f.Name)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "create %s", f.Name)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return written, errors.Wrap(errors.ErrCodeInvalidArchive, err, "decompress %s", f.Name)
	}
	if written > maxBytes {
		return written, errors.New(errors.ErrCodeLimitExceeded, "entry %s exceeds the per-file limit (%d bytes)", f.Name, maxBytes)
	}

	return written, nil
}
