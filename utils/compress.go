package utils

import (
	"io"
	"os"

	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
)

// CompressFile compresses file specified by source to .gz & .xz siblings.
//
// The source file is left in place; callers decide whether to keep it.
func CompressFile(source *os.File) error {
	gzFile, err := os.Create(source.Name() + ".gz")
	if err != nil {
		return err
	}
	defer func() {
		_ = gzFile.Close()
	}()

	gzWriter := pgzip.NewWriter(gzFile)

	_, _ = source.Seek(0, 0)
	_, err = io.Copy(gzWriter, source)
	if err != nil {
		_ = gzWriter.Close()
		return err
	}
	err = gzWriter.Close()
	if err != nil {
		return err
	}

	xzFile, err := os.Create(source.Name() + ".xz")
	if err != nil {
		return err
	}
	defer func() {
		_ = xzFile.Close()
	}()

	xzWriter, err := xz.NewWriter(xzFile)
	if err != nil {
		return err
	}

	_, _ = source.Seek(0, 0)
	_, err = io.Copy(xzWriter, source)
	if err != nil {
		_ = xzWriter.Close()
		return err
	}

	return xzWriter.Close()
}
