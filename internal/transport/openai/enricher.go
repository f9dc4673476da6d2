package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	applogger "github.com/kailas-cloud/synapse/internal/logger"
)

// Fallback values used when a generation step fails.
const (
	DefaultSummary          = "Summary unavailable."
	DefaultTitle            = "Untitled"
	DefaultImageDescription = "Image description unavailable."
	DefaultCategory         = "General"
)

const (
	maxTags         = 5
	titleInputLimit = 2000
	summaryPrompt   = "Summarize this text in 2-3 lines:\n\n%s"
	titlePrompt     = "Generate a short, relevant and catchy title (max 10 words) that best represents the following content:\n\n%s"
	imageAltPrompt  = "You are an AI generating descriptive ALT text. Provide a concise, 2-3 sentence description of the image. Focus on the main subject, a brief note of the setting, and any significant actions. Do not interpret emotions or intentions."
	tagsPrompt      = `**Role:** You are an expert content analyst and indexer.

**Task:** Analyze the content below and generate 5 highly specific and relevant tags.

**Guidelines for Tags:**
1.  **Relevance:** Tags must capture the *core concepts* and primary topics. Do not use generic or overly broad tags.
2.  **Format:** Tags should be 1-3 word keyphrases. Do not use full sentences.
3.  **Quantity:** Provide exactly 5 unique tags.
4.  **Output:** Return *only* a valid JSON array of strings. Do not include any explanation or other text.

**Content:**
%s

**JSON Output:**`
	categoriesPrompt = `**Role:** You are an expert taxonomist and data analyst.
**Task:** Given the text below, return 2-4 broad, high-level categories.

**Format:** Respond ONLY as a valid JSON object with this structure:
{"categories": ["Technology", "AI", "Machine Learning"]}

**Content:**
%s

**JSON Output:**`
)

var wordRe = regexp.MustCompile(`\b\w+\b`)

var errEmptyCompletion = errors.New("empty completion")

// Enricher generates item metadata. Every method fails soft to a fixed default.
type Enricher struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewEnricher creates an enricher.
func NewEnricher(cfg *Config) *Enricher {
	return &Enricher{
		client:  newClient(cfg),
		model:   chatModel(cfg),
		timeout: cfg.Timeout,
	}
}

// Summarize returns a 2-3 line summary.
func (e *Enricher) Summarize(ctx context.Context, content string) string {
	out, err := e.complete(ctx, 120, nil, userText(fmt.Sprintf(summaryPrompt, content)))
	if err != nil || out == "" {
		e.warn(ctx, "summary", err)
		return DefaultSummary
	}
	return out
}

// Title returns a short title for the first 2000 bytes of content.
func (e *Enricher) Title(ctx context.Context, content string) string {
	out, err := e.complete(ctx, 20, nil, userText(fmt.Sprintf(titlePrompt, truncate(content, titleInputLimit))))
	if err != nil || out == "" {
		e.warn(ctx, "title", err)
		return DefaultTitle
	}
	return out
}

// Tags returns up to five lower-cased single-word tags, or none.
func (e *Enricher) Tags(ctx context.Context, content string) []string {
	out, err := e.complete(ctx, 60, nil, userText(fmt.Sprintf(tagsPrompt, content)))
	if err != nil {
		e.warn(ctx, "tags", err)
		return []string{}
	}
	return parseTags(out)
}

// Categories returns 2-4 title-cased categories, or ["General"].
func (e *Enricher) Categories(ctx context.Context, content string) []string {
	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	out, err := e.complete(ctx, 150, format, userText(fmt.Sprintf(categoriesPrompt, content)))
	if err != nil {
		e.warn(ctx, "categories", err)
		return []string{DefaultCategory}
	}
	return parseCategories(out)
}

// DescribeImage captions a PNG image.
func (e *Enricher) DescribeImage(ctx context.Context, png []byte) string {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	msg := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: imageAltPrompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
		},
	}
	out, err := e.complete(ctx, 150, nil, msg)
	if err != nil || out == "" {
		e.warn(ctx, "image description", err)
		return DefaultImageDescription
	}
	return out
}

func (e *Enricher) complete(
	ctx context.Context, maxTokens int, format *openai.ChatCompletionResponseFormat, msg openai.ChatCompletionMessage,
) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          e.model,
		MaxTokens:      maxTokens,
		Messages:       []openai.ChatCompletionMessage{msg},
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (e *Enricher) warn(ctx context.Context, step string, err error) {
	if err == nil {
		err = errEmptyCompletion
	}
	applogger.FromContext(ctx).Warn("Enrichment step failed, using default",
		zap.String("step", step), zap.Error(err))
}

func parseCategories(raw string) []string {
	var parsed struct {
		Categories []any `json:"categories"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed.Categories) == 0 {
		return []string{DefaultCategory}
	}
	caser := cases.Title(language.Und)
	out := make([]string, 0, len(parsed.Categories))
	for _, c := range parsed.Categories {
		s, ok := c.(string)
		if !ok {
			continue
		}
		out = append(out, caser.String(strings.TrimSpace(s)))
	}
	if len(out) == 0 {
		return []string{DefaultCategory}
	}
	return out
}

// parseTags takes the first five word tokens of the model output, lower-cased and deduplicated.
func parseTags(raw string) []string {
	words := wordRe.FindAllString(raw, -1)
	if len(words) > maxTags {
		words = words[:maxTags]
	}
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func userText(s string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: s}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// back off to a rune boundary
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
