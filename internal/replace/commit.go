package replace

import (
	"bufio"
	"os"
	"path/filepath"
)

// withTempRewrite implements spec §4.5 step 5: stream the file through fn
// into a sibling temp file, fsync it, then rename it over the original so
// a crash mid-write never leaves a truncated or half-edited file in place.
func withTempRewrite(path string, fn func(src *bufio.Reader, dst *bufio.Writer) error) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".scatter-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(info.Mode()); err != nil {
		return err
	}

	src := bufio.NewReaderSize(in, 64*1024)
	dst := bufio.NewWriterSize(tmp, 64*1024)

	if err := fn(src, dst); err != nil {
		return err
	}
	if err := dst.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	// Rename succeeded; the deferred Remove below is now a harmless no-op
	// attempt on a path that no longer exists.
	return nil
}
