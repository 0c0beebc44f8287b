package chunker

import "strings"

// DefaultMaxWords is the chunk size used when the caller does not set one.
const DefaultMaxWords = 300

// Split breaks text into consecutive, non-overlapping groups of maxWords
// whitespace-delimited words. Word order is preserved and the last group may be
// shorter. Empty or whitespace-only text yields no chunks.
func Split(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
