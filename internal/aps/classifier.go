package aps

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/apsscout/pagetree/internal/jsonx"
	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/tree"
)

// DetectedSection is a section boundary found heuristically in page text.
type DetectedSection struct {
	Title       string      `json:"title"`
	SectionType SectionType `json:"section_type"`
	PageNumber  int         `json:"page_number"`
}

// Completer is the LLM surface the classifier needs for its fallback.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Classifier assigns section types to APS sections, regex-first with an
// optional LLM fallback for ambiguous titles.
type Classifier struct {
	client Completer
	model  string
}

// NewClassifier builds a classifier. client may be nil, in which case
// ambiguous sections stay Unknown.
func NewClassifier(client Completer, model string) *Classifier {
	return &Classifier{client: client, model: model}
}

// ClassifyByTitle matches the title against the section patterns. Returns
// Unknown when nothing matches.
func (c *Classifier) ClassifyByTitle(title string) SectionType {
	for _, st := range sectionOrder {
		for _, p := range sectionPatterns[st] {
			if p.MatchString(title) {
				return st
			}
		}
	}
	return Unknown
}

// Classify runs the heuristic first and falls back to the LLM when the
// title is ambiguous and text is available.
func (c *Classifier) Classify(ctx context.Context, title, text string) (SectionType, error) {
	if st := c.ClassifyByTitle(title); st != Unknown {
		return st, nil
	}
	if c.client == nil || text == "" {
		return Unknown, nil
	}
	return c.classifyByContent(ctx, title, text)
}

func (c *Classifier) classifyByContent(ctx context.Context, title, text string) (SectionType, error) {
	preview := text
	if len(preview) > 500 {
		preview = preview[:500]
	}
	prompt := fmt.Sprintf(`Classify this medical document section.

Title: %s
Content preview:
%s

Respond with JSON: {"section_type": "<one of face_sheet, progress_note, lab_report, imaging, pathology, operative_report, discharge_summary, consultation, medication_list, vital_signs, nursing_note, therapy_note, mental_health, dental, unknown>"}`, title, preview)

	resp, err := c.client.Complete(ctx, llm.CompletionRequest{
		Model:     c.model,
		Messages:  []llm.Message{llm.TextMessage(llm.RoleUser, prompt)},
		MaxTokens: 100,
	})
	if err != nil {
		return Unknown, fmt.Errorf("classifying section %q: %w", title, err)
	}

	var parsed struct {
		SectionType string `json:"section_type"`
	}
	if err := jsonx.Extract(resp.Content, &parsed); err != nil {
		return Unknown, nil
	}
	st := SectionType(parsed.SectionType)
	if _, ok := sectionPatterns[st]; !ok {
		return Unknown, nil
	}
	return st, nil
}

// headerPattern matches standalone all-caps header lines in page text.
var headerPattern = regexp.MustCompile(`(?m)^\s*([A-Z][A-Z\s\-&/]{3,}(?:REPORT|NOTE|SUMMARY|LIST|SHEET|SIGNS|RECORD)?)\s*$`)

// DetectSections scans page text for recognizable section headers. Each
// (type, title) pair is reported once, at its first page of appearance.
func (c *Classifier) DetectSections(pages []tree.PageContent) []DetectedSection {
	var sections []DetectedSection
	seen := make(map[string]bool)

	for _, page := range pages {
		for _, m := range headerPattern.FindAllStringSubmatch(page.Text, -1) {
			title := strings.TrimSpace(m[1])
			st := c.ClassifyByTitle(title)
			if st == Unknown {
				continue
			}
			key := string(st) + ":" + title
			if seen[key] {
				continue
			}
			seen[key] = true
			sections = append(sections, DetectedSection{
				Title:       title,
				SectionType: st,
				PageNumber:  page.PageNumber,
			})
		}
	}
	return sections
}
