package feed

// LinesSource serves an already-buffered sequence of lines. It backs tests
// and any collaborator that hands the core pre-read text instead of a file.
type LinesSource struct {
	lines []string
	next  int
}

// NewLinesSource creates a source over the given lines.
func NewLinesSource(lines []string) *LinesSource {
	return &LinesSource{lines: lines}
}

// Next implements ports.RecordSource.
func (s *LinesSource) Next() (string, int, bool, error) {
	if s.next >= len(s.lines) {
		return "", s.next, false, nil
	}
	s.next++
	return s.lines[s.next-1], s.next, true, nil
}
