package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/changever/internal/output"
)

func writeReleaseReport(c *cli.Context, report *output.ReleaseReport) error {
	opts := OutputOptions(c)
	writer := output.NewReportWriter(opts.Format)
	return writer.Write(report, opts)
}

// writeText writes s to --output, or to the app writer when no path is given.
func writeText(c *cli.Context, s string) error {
	out, file, err := openOutput(c)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	_, err = fmt.Fprint(out, s)
	return err
}

func openOutput(c *cli.Context) (io.Writer, *os.File, error) {
	path := c.String("output")
	if path == "" {
		return c.App.Writer, nil, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}
