package main

import (
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/alscal/pkg/calibration"
	"github.com/charlie0129/alscal/pkg/firmware"
	"github.com/charlie0129/alscal/pkg/ioreg"
)

func extractArgs(_ *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: missing <ioreg-full.xml>", errUsage)
	}
	if len(args) > 2 {
		return fmt.Errorf("%w: accepts at most 2 args, received %d", errUsage, len(args))
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	input := args[0]
	output := conf.OutputPath()
	if len(args) > 1 {
		output = args[1]
	}

	root, err := ioreg.ParseFile(input)
	if err != nil {
		return err
	}

	rec, err := conf.Matcher().Find(root)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to search %s", input)
	}
	if rec == nil {
		return pkgerrors.Wrapf(calibration.ErrNotFound, "in %s", input)
	}

	logrus.WithFields(logrus.Fields{
		"path":          strings.Join(rec.Path, "/"),
		rec.IdentityKey: rec.IdentityValue,
		"size":          len(rec.Data),
	}).Debug("found sensor node")

	err = firmware.WriteBlob(output, rec.Data)
	if err != nil {
		return err
	}

	printExtractResult(cmd.OutOrStdout(), len(rec.Data), firmware.Instructions{
		OutputPath:       output,
		FirmwarePath:     conf.FirmwarePath(),
		InitramfsCommand: conf.InitramfsCommand(),
	})

	return nil
}

func printExtractResult(w io.Writer, size int, inst firmware.Instructions) {
	fmt.Fprintf(w, "Extracted %s of ALS calibration data\n", bold("%d bytes", size))
	fmt.Fprintf(w, "Written to: %s\n", inst.OutputPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("To install:"))
	for _, line := range inst.Lines() {
		fmt.Fprintln(w, "  "+line)
	}
}
