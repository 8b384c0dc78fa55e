// Package feed adapts raw record feeds to the core's RecordSource port.
package feed

import (
	"bufio"
	"fmt"
	"os"
)

// FileSource streams a line-oriented feed file with 1-based line numbers.
// Failure to open the file is the run-fatal resource error; everything after
// that is per-record and handled by the validator.
type FileSource struct {
	file       *os.File
	scanner    *bufio.Scanner
	lineNumber int
}

// OpenFileSource opens the feed at path.
func OpenFileSource(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed %s: %w", path, err)
	}
	return &FileSource{
		file:    file,
		scanner: bufio.NewScanner(file),
	}, nil
}

// Next implements ports.RecordSource.
func (s *FileSource) Next() (string, int, bool, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", s.lineNumber, false, fmt.Errorf("reading feed %s: %w", s.file.Name(), err)
		}
		return "", s.lineNumber, false, nil
	}
	s.lineNumber++
	return s.scanner.Text(), s.lineNumber, true, nil
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}
