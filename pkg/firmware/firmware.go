// Package firmware writes the extracted calibration blob and describes how to
// install it for the Linux aop_als driver.
package firmware

import (
	"os"

	pkgerrors "github.com/pkg/errors"
)

const (
	// DefaultFileName is where the blob is written when no output path is given.
	DefaultFileName = "aop-als-cal.bin"
	// DefaultFirmwarePath is where the aop_als driver loads the blob from.
	DefaultFirmwarePath = "/lib/firmware/apple/aop-als-cal.bin"
	// DefaultInitramfsCommand rebuilds the initramfs so the blob is available
	// early in boot.
	DefaultInitramfsCommand = "dracut --force --kver $(uname -r)"
)

// WriteBlob writes data to path verbatim, creating or truncating the file.
func WriteBlob(path string, data []byte) (err error) {
	fp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", path)
	}
	defer func(fp *os.File) {
		if cerr := fp.Close(); cerr != nil && err == nil {
			err = pkgerrors.Wrapf(cerr, "failed to close file %s", path)
		}
	}(fp)

	if _, err := fp.Write(data); err != nil {
		return pkgerrors.Wrapf(err, "failed to write file %s", path)
	}

	return nil
}

// Instructions are the manual steps to install a written blob. alscal only
// prints them.
type Instructions struct {
	OutputPath       string
	FirmwarePath     string
	InitramfsCommand string
}

// Lines returns the installation steps, one shell line each.
func (i Instructions) Lines() []string {
	firmwarePath := i.FirmwarePath
	if firmwarePath == "" {
		firmwarePath = DefaultFirmwarePath
	}
	initramfs := i.InitramfsCommand
	if initramfs == "" {
		initramfs = DefaultInitramfsCommand
	}

	return []string{
		"sudo cp " + i.OutputPath + " " + firmwarePath,
		"sudo " + initramfs,
		"# reboot",
	}
}
