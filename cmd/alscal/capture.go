package main

import (
	"context"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ulikunitz/xz"

	"github.com/charlie0129/alscal/pkg/capture"
)

const defaultDumpFileName = "ioreg-full.xml"

func NewCaptureCommand() *cobra.Command {
	compress := false

	cmd := &cobra.Command{
		Use:     "capture [output.xml]",
		Short:   "Dump the I/O registry on macOS (ioreg -l -a)",
		GroupID: gBasic,
		Long: `Dump the whole I/O registry with archived values, which is what extraction
needs. This only works on macOS. Copy the dump to the Linux machine afterwards,
or run extraction on the Mac directly.

With --xz the dump is compressed; alscal reads compressed dumps as-is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !capture.Supported() {
				return capture.ErrUnsupported
			}

			output := defaultDumpFileName
			if len(args) > 0 {
				output = args[0]
			}
			if compress && !strings.HasSuffix(output, ".xz") {
				output += ".xz"
			}

			n, err := captureTo(cmd.Context(), capture.DefaultCapturer(), output, compress)
			if err != nil {
				return err
			}

			logrus.WithField("bytes", n).Infof("registry dump written to %s", output)
			cmd.Printf("Next: %s %s\n", cmd.Root().Name(), output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&compress, "xz", compress, "compress the dump with xz")

	return cmd
}

func captureTo(ctx context.Context, c *capture.Capturer, output string, compress bool) (n int64, err error) {
	fp, err := os.Create(output)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to create file %s", output)
	}
	defer func() {
		if cerr := fp.Close(); cerr != nil && err == nil {
			err = pkgerrors.Wrapf(cerr, "failed to close file %s", output)
		}
		if err != nil {
			if rerr := os.Remove(output); rerr != nil {
				logrus.Warnf("failed to remove partial dump %s", output)
			}
		}
	}()

	var w io.Writer = fp
	var xw *xz.Writer
	if compress {
		xw, err = xz.NewWriter(fp)
		if err != nil {
			return 0, pkgerrors.Wrap(err, "failed to set up xz compression")
		}
		w = xw
	}

	n, err = c.Run(ctx, w)
	if err != nil {
		return n, err
	}

	if xw != nil {
		if err := xw.Close(); err != nil {
			return n, pkgerrors.Wrap(err, "failed to finish xz stream")
		}
	}

	return n, nil
}
