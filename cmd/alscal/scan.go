package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"howett.net/plist"

	"github.com/charlie0129/alscal/pkg/calibration"
	"github.com/charlie0129/alscal/pkg/ioreg"
)

const (
	formatText  = "text"
	formatJSON  = "json"
	formatPlist = "plist"
)

type scanResult struct {
	Input      string                  `json:"input" plist:"input"`
	Candidates []calibration.Candidate `json:"candidates" plist:"candidates"`
}

func NewScanCommand() *cobra.Command {
	format := formatText

	cmd := &cobra.Command{
		Use:     "scan <ioreg-full.xml>",
		Short:   "List registry nodes that look like the ALS sensor",
		GroupID: gAdvanced,
		Long: `List every registry node that identifies as the ALS sensor or carries a
CalibrationData value, in document order, and mark the one that would be
extracted.

Use this when extraction finds nothing, to see whether the dump contains the
sensor at all and which patterns to put in the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}

			root, err := ioreg.ParseFile(args[0])
			if err != nil {
				return err
			}

			res := scanResult{
				Input:      args[0],
				Candidates: conf.Matcher().Scan(root),
			}
			if res.Candidates == nil {
				res.Candidates = []calibration.Candidate{}
			}

			if err := printScanResult(cmd.OutOrStdout(), format, res); err != nil {
				return err
			}

			for _, c := range res.Candidates {
				if c.Selected {
					return nil
				}
			}
			return pkgerrors.Wrapf(calibration.ErrNotFound, "in %s", args[0])
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", format, "output format (text, json, plist)")

	return cmd
}

func printScanResult(w io.Writer, format string, res scanResult) error {
	switch format {
	case formatText:
		printScanText(w, res)
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case formatPlist:
		b, err := plist.MarshalIndent(res, plist.XMLFormat, "\t")
		if err != nil {
			return pkgerrors.Wrap(err, "failed to encode scan result")
		}
		_, err = w.Write(append(b, '\n'))
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, json or plist)", format)
	}
}

func printScanText(w io.Writer, res scanResult) {
	if len(res.Candidates) == 0 {
		fmt.Fprintf(w, "No candidate nodes in %s.\n", res.Input)
		return
	}

	fmt.Fprintf(w, "%s in %s:\n", bold("%d candidate node(s)", len(res.Candidates)), res.Input)
	for _, c := range res.Candidates {
		path := "<unnamed>"
		if len(c.Path) > 0 {
			path = strings.Join(c.Path, "/")
		}

		if c.Selected {
			fmt.Fprintf(w, "\n  %s %s\n", bold("%s", path), bold("(selected)"))
		} else {
			fmt.Fprintf(w, "\n  %s\n", bold("%s", path))
		}

		if c.IdentityMatch {
			fmt.Fprintf(w, "    Identity: %s %s = %s\n", bool2Text(true), c.IdentityKey, c.IdentityValue)
		} else {
			fmt.Fprintf(w, "    Identity: %s\n", bool2Text(false))
		}

		switch {
		case c.Error != "":
			fmt.Fprintf(w, "    CalibrationData: %s %s\n", bool2Text(false), c.Error)
		case c.HasCalibrationData:
			fmt.Fprintf(w, "    CalibrationData: %s %d bytes\n", bool2Text(true), c.Size)
		default:
			fmt.Fprintf(w, "    CalibrationData: %s\n", bool2Text(false))
		}
	}
}
