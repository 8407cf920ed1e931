package output

import (
	"encoding/csv"
	"strconv"
)

// CSVWriter writes the analyzed commits of a release report as CSV.
type CSVWriter struct{}

// Write outputs one row per commit.
func (w *CSVWriter) Write(report *ReleaseReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"Hash", "Level", "Included", "Merge", "Subject"}); err != nil {
		return err
	}
	for _, c := range report.Commits {
		row := []string{
			c.Hash,
			c.Level.String(),
			strconv.FormatBool(c.Included),
			strconv.FormatBool(c.Merge),
			c.Subject,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
