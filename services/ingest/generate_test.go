package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQuestionsIsDeterministic(t *testing.T) {
	first := buildQuestions(sampleTranscript)
	second := buildQuestions(sampleTranscript)

	require.NotEmpty(t, first)
	require.Equal(t, first, second)
}

func TestBuildQuestionsBlanksTheKeyword(t *testing.T) {
	questions := buildQuestions(sampleTranscript)
	require.NotEmpty(t, questions)

	for _, q := range questions {
		require.Contains(t, q.Prompt, "_____")
		// The correct answer must not survive verbatim in the prompt
		require.NotContains(t, strings.ToLower(q.Prompt), strings.ToLower(q.Correct))
		require.LessOrEqual(t, len(q.Distractors), 3)
	}
}

func TestKeywordCandidatesOrderedByFrequencyThenPosition(t *testing.T) {
	sentences := []string{
		"Routines anchor routines because routines settle a classroom quickly",
		"Feedback matters and feedback lands best when it is specific",
		"Modeling the routine once is rarely enough for most classes",
	}

	keywords := keywordCandidates(sentences)
	require.Equal(t, []string{
		"routines", "feedback",
		"anchor", "settle", "classroom", "quickly",
		"matters", "specific", "modeling", "routine", "rarely", "enough", "classes",
	}, keywords)
}

func TestBuildQuestionsThinTranscriptYieldsNothing(t *testing.T) {
	require.Empty(t, buildQuestions("Too short."))
	require.Empty(t, buildQuestions(""))
}

func TestBuildReflectionPromptMentionsTheTopic(t *testing.T) {
	prompt := buildReflectionPrompt(sampleTranscript)
	require.NotEmpty(t, prompt)
}
