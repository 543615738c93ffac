// Package question implements the reply question-detection heuristic.
package question

import "strings"

// markers are matched as plain substrings against the lower-cased text.
// The list mixes punctuation, Chinese interrogative words and particles,
// and English interrogative lead words. Matching is deliberately coarse:
// no word boundaries, no negation handling.
var markers = []string{
	"?", "？", "怎么", "如何", "为什么", "为啥", "什么原因",
	"请教", "请问", "能不能", "可以吗", "是什么", "怎样",
	"how", "why", "what", "can you", "is there", "does", "could",
}

// IsQuestion reports whether the text looks like a question.
// It is a pure function of the text and is total: any input terminates
// with a boolean.
func IsQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
