package results

import (
	"fmt"
	"io"
)

const separator = "--------------------------------------------------------------------------------"

// FormatText writes a run summary in text form.
func (s *Summary) FormatText(w io.Writer) error {
	for _, result := range s.QueryResults {
		_, err := fmt.Fprintf(w, "%s: %d row(s), %d emitted, %d skipped, %d dropped in %d ms\n",
			result.Query, result.Rows, result.Emitted, result.Skipped, result.Dropped, result.Duration.Milliseconds())
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, separator); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Run:      %s\n", s.RunID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Rows:     %d (%.2f/s)\n", s.Rows, s.RowsPerSecond()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Emitted:  %d\n", s.Emitted); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Skipped:  %d\n", s.Skipped); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Dropped:  %d (%.1f%%)\n", s.Dropped, s.DroppedPercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Duration: %d ms\n", s.TotalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}
