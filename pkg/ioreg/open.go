package ioreg

import (
	"bufio"
	"bytes"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

type readCloser struct {
	io.Reader
	f *os.File
}

func (r *readCloser) Close() error {
	return r.f.Close()
}

// Open opens a registry dump for reading. Dumps compressed with xz are
// decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open file %s", path)
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, pkgerrors.Wrapf(err, "failed to read file %s", path)
	}

	if !bytes.Equal(magic, xzMagic) {
		return &readCloser{Reader: br, f: f}, nil
	}

	logrus.WithField("path", path).Debug("registry dump is xz-compressed")

	xr, err := xz.NewReader(br)
	if err != nil {
		f.Close()
		return nil, pkgerrors.Wrapf(err, "failed to decompress file %s", path)
	}

	return &readCloser{Reader: xr, f: f}, nil
}
