package crop

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrImagesFailed is returned by Run when at least one image could not be
// processed. The remaining images are still cropped.
var ErrImagesFailed = errors.New("some images failed")

// Stats counts the outcomes of a run.
type Stats struct {
	Images             int `json:"images"`
	ImagesProcessed    int `json:"images_processed"`
	ImagesSkipped      int `json:"images_skipped"`
	ImagesFailed       int `json:"images_failed"`
	PatchesWritten     int `json:"patches_written"`
	PatchesSkipped     int `json:"patches_skipped"`
	AnnotationsKept    int `json:"annotations_kept"`
	AnnotationsDropped int `json:"annotations_dropped"`
	LabelLinesRejected int `json:"label_lines_rejected"`
}

// ImageFailure records an image that could not be processed.
type ImageFailure struct {
	Image string `json:"image"`
	Error string `json:"error"`
}

// Result summarizes a run.
type Result struct {
	RunID string `json:"run_id"`
	Stats
	Failures []ImageFailure `json:"failures,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Err returns ErrImagesFailed wrapped with a count when any image failed.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", ErrImagesFailed, len(r.Failures), r.Images)
}

// FormatResult renders r as "text" or "json".
func FormatResult(r *Result, format string) (string, error) {
	switch format {
	case "json":
		bts, err := json.MarshalIndent(r, "", "  ")
		return string(bts), err
	case "text", "":
		return formatText(r), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

func formatText(r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:         %s\n", r.RunID)
	fmt.Fprintf(&b, "Images:      %d total, %d processed, %d skipped, %d failed\n",
		r.Images, r.ImagesProcessed, r.ImagesSkipped, r.ImagesFailed)
	fmt.Fprintf(&b, "Patches:     %d written, %d skipped\n", r.PatchesWritten, r.PatchesSkipped)
	fmt.Fprintf(&b, "Annotations: %d kept, %d dropped, %d label lines rejected\n",
		r.AnnotationsKept, r.AnnotationsDropped, r.LabelLinesRejected)
	fmt.Fprintf(&b, "Duration:    %v\n", r.Duration.Round(time.Millisecond))
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "FAILED %s: %s\n", f.Image, f.Error)
	}
	return b.String()
}
