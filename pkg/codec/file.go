package codec

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/errors"
)

// Artifact describes a written output file.
type Artifact struct {
	Path   string `yaml:"path" json:"path"`
	SHA256 string `yaml:"sha256" json:"sha256"`
	Bytes  int64  `yaml:"bytes" json:"bytes"`
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteFile creates path by calling fn with a writer, then atomically
// renames the result into place. Parent directories are created. The
// returned artifact carries the SHA-256 digest of the bytes written.
func WriteFile(path string, fn func(io.Writer) error) (Artifact, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return Artifact{}, errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Artifact{}, errors.WrapIO("create", path, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	hasher := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(tmp, hasher)}
	buf := bufio.NewWriter(counter)

	if err := fn(buf); err != nil {
		_ = tmp.Close()
		return Artifact{}, errors.WrapIO("write", path, err)
	}
	if err := buf.Flush(); err != nil {
		_ = tmp.Close()
		return Artifact{}, errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		return Artifact{}, errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return Artifact{}, errors.WrapIO("rename", path, err)
	}

	return Artifact{
		Path:   path,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
		Bytes:  counter.n,
	}, nil
}

// FileSHA256 returns the hex SHA-256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
