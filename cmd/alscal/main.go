package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/alscal/pkg/calibration"
	"github.com/charlie0129/alscal/pkg/capture"
	"github.com/charlie0129/alscal/pkg/config"
)

var (
	logLevel   = "info"
	configPath = config.DefaultPath()
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func loadConfig() (*config.File, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	logrus.WithFields(conf.LogrusFields()).Debug("config loaded")

	return conf, nil
}

func handleCmdError(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()

	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(w, "Error: %v\n\n", err)
		fmt.Fprint(w, cmd.UsageString())
	case errors.Is(err, calibration.ErrNotFound):
		w = cmd.OutOrStdout()
		fmt.Fprintln(w, "ERROR: No ALS CalibrationData found in ioreg dump.")
		fmt.Fprintln(w, "Make sure you captured with: "+capture.DefaultCapturer().CommandLine()+" > ioreg-full.xml")
	case errors.Is(err, capture.ErrUnsupported):
		fmt.Fprintf(w, "Error: %v\n", err)
		fmt.Fprintln(w, "Run the capture on the Mac, then copy the dump to this machine.")
	default:
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			fmt.Fprintf(w, "Error: %+v\n", err)
		} else {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}
}

// execute runs cmd and maps its outcome to a process exit code.
func execute(ctx context.Context, cmd *cobra.Command) int {
	c, err := cmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if c == nil {
		c = cmd
	}
	handleCmdError(c, err)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, NewCommand())
	stop()
	os.Exit(code)
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alscal <ioreg-full.xml> [output.bin]",
		Short: "alscal extracts ambient-light sensor calibration from a macOS registry dump",
		Long: `alscal extracts the ambient-light sensor (ALS) calibration blob from a macOS
I/O registry dump and writes it as a firmware file for the Linux aop_als driver.

Capture the dump on macOS first:

  ioreg -l -a > ioreg-full.xml

The output defaults to aop-als-cal.bin in the current directory.

An input file named like a subcommand (scan, capture, config, version, help)
runs that subcommand instead; pass it as ./scan.

If no calibration data is found, the diagnostic is printed on stdout and the
exit status is 1.`,
		Args:          extractArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: runExtract,
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddCommand(
		NewVersionCommand(),
		NewScanCommand(),
		NewCaptureCommand(),
		NewConfigCommand(),
	)

	return cmd
}
