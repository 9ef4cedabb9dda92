package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// errSameFile reports that the output would overwrite the input it is read from.
var errSameFile = errors.New("output is the same file as input")

// sameFile reports whether a and b name the same existing file.
func sameFile(a, b string) bool {
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// copyFile copies src to dst byte for byte, keeping the permission bits and
// modification time of src. dst is created or truncated and must not be src.
func copyFile(src, dst string) error {
	if sameFile(src, dst) {
		return &Error{Kind: KindInvalidConfig, Page: -1, Op: "copy", Err: fmt.Errorf("%w: %s", errSameFile, dst)}
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return &Error{Kind: KindOutputUnwritable, Page: -1, Op: "copy", Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &Error{Kind: KindOutputUnwritable, Page: -1, Op: "copy", Err: fmt.Errorf("write %s: %w", dst, err)}
	}
	if err := out.Close(); err != nil {
		return &Error{Kind: KindOutputUnwritable, Page: -1, Op: "copy", Err: err}
	}

	// OpenFile only applies the mode on creation.
	if err := os.Chmod(dst, fi.Mode().Perm()); err != nil {
		return &Error{Kind: KindOutputUnwritable, Page: -1, Op: "copy", Err: err}
	}
	return os.Chtimes(dst, fi.ModTime(), fi.ModTime())
}
