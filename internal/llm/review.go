package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"codeintel/internal/metrics"
	"codeintel/internal/quality"
)

// MaxReviewSource bounds the source bytes included in a review prompt.
const MaxReviewSource = 16 * 1024

const reviewSystemPrompt = `You are a senior software engineer reviewing a single source file. You are given static metrics computed for the file and, when available, a quality grade from a clustering model.

Rules:
- Base every remark on the metrics and the code shown
- Do NOT invent functions, files or behaviour that are not shown
- Prefer concrete, actionable suggestions over general advice

Answer in Markdown with three sections: Summary, Strengths, Improvements. Keep it under 300 words.`

// ReviewRequest is the material a review is based on.
type ReviewRequest struct {
	Path     string
	Source   []byte
	Features metrics.FeatureVector
	// Assessment is nil when no quality model is configured.
	Assessment *quality.Assessment
}

// ReviewMessages builds the chat conversation asking for a review.
func ReviewMessages(r ReviewRequest) []Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\nLanguage: %s\n\nMetrics:\n", r.Path, r.Features.Language)
	for _, f := range r.Features.Fields()[2:] {
		fmt.Fprintf(&sb, "- %s: %s\n", f.Name, metrics.FormatValue(f.Value))
	}
	if a := r.Assessment; a != nil {
		fmt.Fprintf(&sb, "\nQuality: %s (grade %s, score %d)\n", a.Label, a.Letter, a.Score)
		for _, s := range a.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	src, truncated := clip(r.Source, MaxReviewSource)
	sb.WriteString("\n```\n")
	sb.WriteString(src)
	if !strings.HasSuffix(src, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	if truncated {
		fmt.Fprintf(&sb, "(source truncated to the first %d bytes)\n", MaxReviewSource)
	}

	return []Message{
		{Role: "system", Content: reviewSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

// clip cuts src to at most n bytes without splitting a UTF-8 sequence.
func clip(src []byte, n int) (string, bool) {
	if len(src) <= n {
		return strings.ToValidUTF8(string(src), ""), false
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(src[cut]) {
		cut--
	}
	return strings.ToValidUTF8(string(src[:cut]), ""), true
}
