// Package fsutil contains filesystem helpers shared by the artifact writers.
package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
)

// WriteAtomic writes an artifact through fill into a temporary file next to path,
// syncs it and renames it over path. On any failure the temporary file is removed
// and the previous content of path, if any, is left untouched.
func WriteAtomic(path string, fill func(w io.Writer) error) error {
	return WriteAllAtomic(Artifact{Path: path, Fill: fill})
}

// Artifact is one file of a set committed by WriteAllAtomic.
type Artifact struct {
	Path string
	Fill func(w io.Writer) error
}

// WriteAllAtomic stages every artifact in a temporary file and renames them into
// place only once all of them were written. If any artifact fails, no path is
// touched.
func WriteAllAtomic(artifacts ...Artifact) (err error) {
	staged := make([]string, 0, len(artifacts))
	defer func() {
		if err != nil {
			for _, name := range staged {
				_ = os.Remove(name)
			}
		}
	}()

	for _, a := range artifacts {
		tmpName, serr := stage(a.Path, a.Fill)
		if serr != nil {
			return serr
		}
		staged = append(staged, tmpName)
	}
	for i, a := range artifacts {
		if err = os.Rename(staged[i], a.Path); err != nil {
			return fsErr("atomic rename", a.Path, err)
		}
	}
	return nil
}

func stage(path string, fill func(w io.Writer) error) (_ string, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fsErr("create output directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fsErr("create temporary file", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = fill(bw); err != nil {
		return "", err
	}
	if err = bw.Flush(); err != nil {
		return "", fsErr("flush artifact", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fsErr("sync artifact", path, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fsErr("close artifact", path, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return "", fsErr("chmod artifact", path, err)
	}
	return tmpName, nil
}

// WriteFileAtomic is WriteAtomic for an in-memory payload.
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return fsErr("write artifact", path, err)
		}
		return nil
	})
}

// ReadFile reads path, classifying failures as filesystem or input errors.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	return data, nil
}

// OpenError classifies a failure to open an expected input file: a missing file is
// an input data error, anything else is a filesystem error.
func OpenError(path string, err error) error {
	if os.IsNotExist(err) {
		return ferrors.InputError("expected file not found").WithContext("path", path).WithCause(err).Build()
	}
	return fsErr("read file", path, err)
}

func fsErr(op, path string, err error) error {
	return ferrors.FileSystemError(fmt.Sprintf("%s failed", op)).WithContext("path", path).WithCause(err).Build()
}
