package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alnah/go-cuesplit/internal/format"
	"github.com/alnah/go-cuesplit/internal/timecode"
	"github.com/alnah/go-cuesplit/internal/track"
)

// previewWidth is how many trailing characters of a path the summary shows.
const previewWidth = 46

// printInputs shows the files a split run works with.
func printInputs(w io.Writer, sheet, media, outDir string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Input sheet: [%s]\n", format.Tail(sheet, previewWidth))
	fmt.Fprintf(w, "Input media: [%s]\n", format.Tail(media, previewWidth))
	fmt.Fprintf(w, "Output dir : [%s]\n", format.Tail(outDir, previewWidth))
}

// printPreview shows the first track and the last two.
func printPreview(w io.Writer, tracks []track.Resolved) {
	fmt.Fprintf(w, "\nPreview (%d tracks):\n", len(tracks))
	for i, t := range tracks {
		if i != 0 && i+2 < len(tracks) {
			continue
		}
		fmt.Fprintln(w, previewLine(i, t))
	}
}

// previewLine renders one track as
// "First: begin 0:00:00.000 [0.000000], length 0:03:24.000 [204.000000]".
// An open-ended track shows a zero length and "open".
func previewLine(i int, t track.Resolved) string {
	label := "First"
	if i > 0 {
		label = fmt.Sprintf("#%02d", i+1)
	}
	length, raw := t.Duration, timecode.Seconds(t.Duration)
	if !t.Bounded {
		length, raw = 0, "open"
	}
	return fmt.Sprintf("%5s: begin %s [%s], length %s [%s]",
		label, timecode.FormatHMS(t.Begin()), timecode.Seconds(t.Begin()), timecode.FormatHMS(length), raw)
}

// writeFileAtomic writes content to path atomically.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
// On write failure, the partial file is removed.
func writeFileAtomic(path, content string) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}
	return nil
}
