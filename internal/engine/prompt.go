package engine

import "strings"

// ContextTags are the style labels the model may assign to an expression.
var ContextTags = []string{"ROMANTIC", "ANGER", "BUSINESS", "GREETING", "SLANG", "DAILY", "EMOTION", "HUMOR"}

const vocabularyPrompt = `You are an English teacher preparing study material for Korean learners.
Below is the transcript of a short English video.

Pick the expressions (idioms, phrasal verbs, collocations, useful sentences) that are worth learning.
For each one return an object with exactly these keys:
- "expression": the English expression as it appears in the transcript
- "meaningKr": a natural Korean translation of the expression in this context
- "contextTag": one of %TAGS%

Rules:
- Respond with a JSON array of such objects and nothing else.
- Do NOT wrap the output in markdown code fences (no ` + "```" + `).
- Do NOT add explanations before or after the array.
- If nothing is worth learning, respond with [].

Transcript:
"""
%TRANSCRIPT%
"""`

// BuildVocabularyPrompt renders the extraction prompt for a transcript text.
func BuildVocabularyPrompt(transcript string) string {
	return strings.NewReplacer(
		"%TAGS%", strings.Join(ContextTags, ", "),
		"%TRANSCRIPT%", transcript,
	).Replace(vocabularyPrompt)
}
