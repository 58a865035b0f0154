// Package capture produces registry dumps on macOS by running ioreg.
package capture

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrUnsupported is returned when the host cannot produce a registry dump.
var ErrUnsupported = pkgerrors.New("capturing a registry dump requires macOS")

// Capturer runs a command that prints a registry dump on stdout.
type Capturer struct {
	Command string
	Args    []string
}

// DefaultCapturer dumps the whole registry with archived values, which is
// what the calibration search needs.
func DefaultCapturer() *Capturer {
	return &Capturer{
		Command: "ioreg",
		Args:    []string{"-l", "-a"},
	}
}

// Supported reports whether the host runs macOS.
func Supported() bool {
	return runtime.GOOS == "darwin"
}

// CommandLine is the shell form of the command, for messages.
func (c *Capturer) CommandLine() string {
	return strings.Join(append([]string{c.Command}, c.Args...), " ")
}

// Run executes the command and copies its stdout to w. It returns the number
// of bytes written.
func (c *Capturer) Run(ctx context.Context, w io.Writer) (int64, error) {
	path, err := exec.LookPath(c.Command)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to find %s", c.Command)
	}

	logrus.WithField("command", c.CommandLine()).Debug("capturing registry dump")

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cw := &countingWriter{w: w}
	var stderr bytes.Buffer
	cmd.Stdout = cw
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return cw.n, pkgerrors.Wrapf(err, "%s failed: %s", c.CommandLine(), msg)
		}
		return cw.n, pkgerrors.Wrapf(err, "%s failed", c.CommandLine())
	}

	return cw.n, nil
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
