package ingest

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// generatedQuestion is one quiz question derived from the transcript
type generatedQuestion struct {
	Prompt      string
	Explanation string
	Correct     string
	Distractors []string
}

// stopwords excluded from keyword extraction
var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "because": true,
	"before": true, "being": true, "between": true, "could": true,
	"during": true, "every": true, "having": true, "other": true,
	"really": true, "should": true, "something": true, "their": true,
	"there": true, "these": true, "things": true, "think": true,
	"those": true, "through": true, "very": true, "where": true,
	"which": true, "while": true, "would": true, "your": true,
}

// splitSentences breaks the transcript into trimmed sentences, dropping
// fragments too short to carry a question.
func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})

	var sentences []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len(s) >= 25 {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// normalizeWord lowercases and strips punctuation from a token
func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

// keywordCandidates returns transcript keywords ordered by frequency, ties
// broken by first occurrence so repeated runs produce identical output.
func keywordCandidates(sentences []string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	position := 0

	for _, sentence := range sentences {
		for _, token := range strings.Fields(sentence) {
			word := normalizeWord(token)
			if len(word) < 6 || stopwords[word] {
				continue
			}
			if _, ok := firstSeen[word]; !ok {
				firstSeen[word] = position
			}
			counts[word]++
			position++
		}
	}

	keywords := make([]string, 0, len(counts))
	for word := range counts {
		keywords = append(keywords, word)
	}

	// Deterministic order: frequency desc, then first occurrence
	sort.Slice(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return firstSeen[a] < firstSeen[b]
	})
	return keywords
}

// sentenceForKeyword finds the first sentence containing the keyword
func sentenceForKeyword(sentences []string, keyword string) (string, bool) {
	for _, sentence := range sentences {
		for _, token := range strings.Fields(sentence) {
			if normalizeWord(token) == keyword {
				return sentence, true
			}
		}
	}
	return "", false
}

// blankKeyword replaces the first token matching the keyword with a blank
func blankKeyword(sentence, keyword string) string {
	tokens := strings.Fields(sentence)
	for i, token := range tokens {
		if normalizeWord(token) == keyword {
			tokens[i] = "_____"
			break
		}
	}
	return strings.Join(tokens, " ")
}

// buildQuestions derives up to three fill-in-the-blank questions from the
// transcript. The whole derivation is deterministic: same transcript, same
// questions, which keeps ingest re-runs idempotent.
func buildQuestions(transcript string) []generatedQuestion {
	sentences := splitSentences(transcript)
	keywords := keywordCandidates(sentences)

	var questions []generatedQuestion
	used := make(map[string]bool)

	for _, keyword := range keywords {
		if len(questions) == 3 {
			break
		}
		sentence, ok := sentenceForKeyword(sentences, keyword)
		if !ok || used[sentence] {
			continue
		}

		var distractors []string
		for _, other := range keywords {
			if other != keyword && !used[other] {
				distractors = append(distractors, other)
			}
			if len(distractors) == 3 {
				break
			}
		}
		if len(distractors) < 2 {
			break
		}

		used[sentence] = true
		used[keyword] = true
		questions = append(questions, generatedQuestion{
			Prompt:      "Fill in the blank from the lesson: \"" + blankKeyword(sentence, keyword) + "\"",
			Explanation: fmt.Sprintf("The lesson says: \"%s\"", sentence),
			Correct:     keyword,
			Distractors: distractors,
		})
	}

	return questions
}

// buildReflectionPrompt derives the reflection assignment body from the
// opening of the transcript.
func buildReflectionPrompt(transcript string) string {
	sentences := splitSentences(transcript)

	intro := ""
	if len(sentences) > 0 {
		intro = sentences[0]
		if len(sentences) > 1 {
			intro += ". " + sentences[1]
		}
		intro += "."
	}

	if intro == "" {
		return "After watching the lesson, write a short reflection on how you will apply it in your own classroom."
	}
	return fmt.Sprintf(
		"The lesson opens with: \"%s\"\n\nWrite a short reflection covering what you took away from this lesson and how you will apply it in your own classroom.",
		intro,
	)
}
