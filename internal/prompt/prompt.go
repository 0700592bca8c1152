// Package prompt builds the system prompt for each request kind.
package prompt

import (
	"fmt"
	"strings"

	"studymate/internal/domain"
)

// ContextPlaceholder marks where document text is inserted into a template.
const ContextPlaceholder = "{context}"

// Messages sent as the user turn for requests that are not typed by the user.
const (
	SummarizeMessage = "Please summarize the document."
	ReviewMessage    = "Please give review suggestions and key points for the content I have studied."
)

var defaultTemplates = map[domain.RequestKind]string{
	domain.KindChat: `You are a patient study assistant who helps the user understand and master the material through conversation. Ground your answers in the document content below and in your own expertise.

Document content:
{context}

Guidelines:
1. Use Socratic questioning to guide the user's thinking.
2. Explain from simple to complex, step by step.
3. Use analogies and examples for abstract concepts.
4. Summarize and revisit key points when appropriate.
5. Encourage the user to ask questions.

Answer clearly and accurately, organise longer answers into points or sections, and highlight important concepts. If a question goes beyond the document, you may draw on general knowledge but say so explicitly.`,

	domain.KindSummarize: `Write a complete, well-structured study summary of the document below in strict markdown.

Document content:
{context}

Structure the summary with # for the title, ## and ### for sections, and - for list items. Cover the author or source background if known, the main arguments, the key findings, the methods used, and their practical implications. Keep the hierarchy clear so it can be turned into a mind map. Where the text does not state something explicitly, infer it from context and say that you did.`,

	domain.KindReview: `Based on the content below, produce effective review suggestions.

Studied content:
{context}

Cover:
1. Key points to revisit
2. Questions that check understanding
3. Suggested practice exercises
4. Directions for going further
5. Common mistakes to avoid

Make every suggestion concrete and actionable, set a sensible difficulty, connect it to real applications, and include ways for the learner to test themselves.`,
}

// Builder renders system prompts from per-kind templates.
type Builder struct {
	templates map[domain.RequestKind]string
}

// NewBuilder creates a builder. overrides maps a kind name ("chat", "summarize",
// "review") to a template; each template must contain ContextPlaceholder.
func NewBuilder(overrides map[string]string) (*Builder, error) {
	b := &Builder{templates: make(map[domain.RequestKind]string, len(defaultTemplates))}
	for k, v := range defaultTemplates {
		b.templates[k] = v
	}
	for name, tmpl := range overrides {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(tmpl, ContextPlaceholder) {
			return nil, fmt.Errorf("prompt %q is missing %s", name, ContextPlaceholder)
		}
		b.templates[kind] = tmpl
	}
	return b, nil
}

// Build returns the system prompt for kind with context inserted.
func (b *Builder) Build(kind domain.RequestKind, context string) string {
	tmpl, ok := b.templates[kind]
	if !ok {
		tmpl = b.templates[domain.KindChat]
	}
	return strings.ReplaceAll(tmpl, ContextPlaceholder, context)
}

// ParseKind maps a request kind name to its value.
func ParseKind(name string) (domain.RequestKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chat":
		return domain.KindChat, nil
	case "summarize", "summary":
		return domain.KindSummarize, nil
	case "review":
		return domain.KindReview, nil
	default:
		return 0, fmt.Errorf("unknown request kind %q", name)
	}
}
