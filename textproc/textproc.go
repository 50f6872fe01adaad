// Package textproc holds the pure text metrics and the constrained markdown
// renderer used for article bodies.
package textproc

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

// WordsPerMinute is the baseline reading speed for time estimates.
const WordsPerMinute = 200

// ErrEmptyText is returned when a metric is asked about empty input.
var ErrEmptyText = errors.New("text must be a non-empty string")

const vowels = "aeiouy"

func isVowel(c byte) bool {
	return strings.IndexByte(vowels, c) >= 0
}

// CountSyllables estimates the syllable count of a single word by counting
// vowel-group transitions, with corrections for a trailing silent "e" and a
// consonant-"le" ending. Never returns less than 1.
func CountSyllables(word string) int {
	word = strings.ToLower(word)
	if word == "" {
		return 1
	}
	count := 0
	if isVowel(word[0]) {
		count++
	}
	for i := 1; i < len(word); i++ {
		if isVowel(word[i]) && !isVowel(word[i-1]) {
			count++
		}
	}
	if strings.HasSuffix(word, "e") {
		count--
	}
	if strings.HasSuffix(word, "le") && len(word) > 2 && !isVowel(word[len(word)-3]) {
		count++
	}
	if count < 1 {
		count = 1
	}
	return count
}

var sentenceEndRe = regexp.MustCompile(`(\w+)([.!?])(?:\s|$)`)

var abbreviations = map[string]bool{
	"Mr":  true,
	"Mrs": true,
	"Ms":  true,
	"Dr":  true,
}

// CountSentences counts terminal punctuation at word boundaries, skipping
// periods that belong to common abbreviations or single-letter initials.
func CountSentences(text string) int {
	count := 0
	for _, m := range sentenceEndRe.FindAllStringSubmatch(text, -1) {
		word, punct := m[1], m[2]
		if punct == "." {
			if abbreviations[word] {
				continue
			}
			if len(word) == 1 && word[0] >= 'A' && word[0] <= 'Z' {
				continue
			}
		}
		count++
	}
	return count
}

// FleschScores computes the Flesch Reading Ease and Flesch-Kincaid Grade
// Level of the text. Both are 0 when the text has no words or sentences.
func FleschScores(text string) (ease, grade float64) {
	words := strings.Fields(text)
	wordCount := float64(len(words))
	sentences := float64(CountSentences(text))
	if wordCount == 0 || sentences == 0 {
		return 0, 0
	}
	syllables := 0.0
	for _, w := range words {
		syllables += float64(CountSyllables(w))
	}
	ease = 206.835 - 1.015*(wordCount/sentences) - 84.6*(syllables/wordCount)
	grade = 0.39*(wordCount/sentences) + 11.8*(syllables/wordCount) - 15.59
	return ease, grade
}

// EstimateReadingTime returns the estimated minutes needed to read the text
// at the given pace, scaled up for harder text: the base word-count estimate
// grows by grade-level percent.
func EstimateReadingTime(text string, wordsPerMinute float64) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyText
	}
	base := float64(len(strings.Fields(text))) / wordsPerMinute
	_, grade := FleschScores(text)
	return base * (1 + math.Max(0, grade)/100), nil
}
