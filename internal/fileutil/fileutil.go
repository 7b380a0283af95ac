package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// TempSibling returns a hidden, unique path next to dst that keeps dst's
// extension. The file is created empty so the name is reserved.
func TempSibling(dst string) (string, error) {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	f, err := os.CreateTemp(dir, "."+stem+".partial-*"+ext)
	if err != nil {
		return "", fmt.Errorf("reserve temp file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// WriteAtomic writes dst through a temporary sibling and renames it into
// place once write succeeds. dst is never left half-written.
func WriteAtomic(dst string, mode os.FileMode, write func(io.Writer) error) (err error) {
	tmp, err := TempSibling(dst)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if err = write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, mode); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

// MoveFile renames src to dst, falling back to copy and remove when the two
// paths are on different filesystems.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	info, statErr := os.Stat(src)
	if statErr != nil {
		return statErr
	}
	if err := CopyFileMode(src, dst, info.Mode().Perm()); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}
	return os.Remove(src)
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
