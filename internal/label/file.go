package label

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineBytes bounds a single label line.
const maxLineBytes = 1 << 20

// Result is the outcome of reading a label file.
type Result struct {
	Annotations []Annotation
	// Rejected counts lines that were dropped as malformed or degenerate.
	Rejected int
}

// Parse reads annotations from r. A malformed, degenerate or over-long line
// is logged and dropped; it never aborts the rest of the input. UTF-8 and
// UTF-16 input with a byte order mark is accepted. The returned error is
// reserved for read failures.
func Parse(r io.Reader, source string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReaderSize(dec, 64*1024)

	var res Result
	lineNo := 0
	for {
		raw, tooLong, err := readLine(br, maxLineBytes)
		if err != nil && !errors.Is(err, io.EOF) {
			return res, fmt.Errorf("reading %s: %w", source, err)
		}
		eof := err != nil
		if eof && len(raw) == 0 && !tooLong {
			break
		}
		lineNo++

		var lineErr error
		switch {
		case tooLong:
			lineErr = ErrLineTooLong
		case len(bytes.TrimSpace(raw)) == 0:
		default:
			ann, err := ParseLine(string(raw))
			if err != nil {
				lineErr = err
			} else {
				res.Annotations = append(res.Annotations, ann)
			}
		}
		if lineErr != nil {
			res.Rejected++
			perr := &ParseError{Source: source, Line: lineNo, Err: lineErr}
			logger.Warn("Dropping label line", "error", perr)
		}
		if eof {
			break
		}
	}
	return res, nil
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed up to its end and reported with tooLong set.
func readLine(br *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			// Room for a CRLF terminator.
			if len(line)+len(chunk) > limit+2 {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > limit {
			return nil, true, err
		}
		return line, tooLong, err
	}
}

// ReadFile parses the label file at path.
func ReadFile(path string, logger *slog.Logger) (Result, error) {
	f, err := os.Open(path) //nolint:gosec // G304: label paths come from the dataset layout
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = f.Close() }()

	return Parse(f, path, logger)
}

// Write renders one line per annotation.
func Write(w io.Writer, anns []Annotation) error {
	bw := bufio.NewWriter(w)
	for _, a := range anns {
		if _, err := bw.WriteString(FormatLine(a)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// IsNotExist reports whether err means the label file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
