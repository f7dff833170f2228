package charclass

// NextBoundary returns the unit index of the next word-motion stop in line
// at or after start: the beginning of the next run of word or punctuation
// characters. Returns the line length when no further stop exists.
//
// Word and punctuation runs are distinct stops, matching Vim's "w" motion.
func NextBoundary(line string, start int, separators string) int {
	runes := []rune(line)
	if start >= len(runes) {
		return len(runes)
	}

	from := Classify(runes[start], separators)
	i := start

	// Leave the current run.
	for i < len(runes) && Classify(runes[i], separators) == from {
		i++
	}
	// Skip any blanks between runs.
	for i < len(runes) && Classify(runes[i], separators) == KindBlank {
		i++
	}
	return i
}

// PrevBoundary returns the unit index of the previous word-motion stop in
// line strictly before start: the beginning of the run containing the
// nearest preceding non-blank character. Returns 0 at the start of line.
func PrevBoundary(line string, start int, separators string) int {
	runes := []rune(line)
	if start > len(runes) {
		start = len(runes)
	}
	i := start - 1

	// Skip blanks backward.
	for i >= 0 && Classify(runes[i], separators) == KindBlank {
		i--
	}
	if i < 0 {
		return 0
	}

	// Walk to the start of this run.
	kind := Classify(runes[i], separators)
	for i > 0 && Classify(runes[i-1], separators) == kind {
		i--
	}
	return i
}
