package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/localeflow"
)

// batchDelimiter separates batch items in translation requests and
// responses. The marker is long and symmetrical precisely so it never
// appears in real content; the model is instructed to echo it verbatim
// between translations.
const batchDelimiter = "\n<<<|SEG|>>>\n"

// OpenAIProvider implements the Provider interface using OpenAI's API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a batch of texts in one round trip. The batch is
// joined with the reserved delimiter, and the response is split on it; a
// response with a different segment count is a CountMismatchError, never a
// silent truncation.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildTranslatePrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: strings.Join(req.Texts, batchDelimiter)},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, &localeflow.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &localeflow.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return splitTranslations(resp.Choices[0].Message.Content, len(req.Texts))
}

// Review scores a batch of (original, translation) pairs against the rubric
// in one round trip. An unparseable response is a soft failure and comes
// back as a review_failed result, not an error.
func (p *OpenAIProvider) Review(ctx context.Context, req ReviewRequest) (ReviewResult, error) {
	payload, err := json.Marshal(map[string]any{
		"target_language": localeflow.LocaleName(req.TargetLocale),
		"originals":       req.Originals,
		"translations":    req.Translations,
	})
	if err != nil {
		return ReviewResult{}, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildReviewPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return ReviewResult{}, &localeflow.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return ReviewResult{}, &localeflow.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseReview(resp.Choices[0].Message.Content), nil
}

func buildTranslatePrompt(req TranslateRequest) string {
	sourceName := localeflow.LocaleName(req.SourceLocale)
	targetName := localeflow.LocaleName(req.TargetLocale)
	styleDesc := localeflow.StyleDescription(req.Style)

	contextText := "The content is general web content."
	if req.Context != "" {
		contextText = fmt.Sprintf("The content is for: %s. Adapt the tone to be appropriate for this context.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert native translator. You translate %s content to %s with the fluency and nuance of a highly educated native speaker.

# Context
%s

# Register
%s

# Task
The user message contains several texts separated by the marker:
<<<|SEG|>>>
Translate each text into idiomatic %s.

# Rules
- Return ONLY the translations, separated by the exact same marker, in the exact same order.
- Return exactly as many translations as there are input texts. Never merge, split, drop, or add texts.
- Preserve any HTML tags, attributes, URLs, and placeholders (e.g. {{name}}, {count}, %%s) verbatim.
- Preserve meaningful whitespace and line breaks within each text.
- Never translate idioms literally; replace them with natural %s equivalents.
- Do not add explanations, numbering, or quotation marks around translations.`,
		sourceName, targetName, contextText, styleDesc, targetName, targetName)

	if len(req.Glossary) > 0 {
		prompt += "\n\n# Glossary\nWhen you encounter these phrases, prefer these translations (unless context demands otherwise):"
		for source, target := range req.Glossary {
			prompt += fmt.Sprintf("\n- %q → %s", source, target)
		}
	}

	if len(req.ExcludedTerms) > 0 {
		terms := strings.Join(req.ExcludedTerms, "\n- ")
		prompt += fmt.Sprintf("\n\n# Exclusions\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- %s", terms)
	}

	return prompt
}

func buildReviewPrompt(req ReviewRequest) string {
	targetName := localeflow.LocaleName(req.TargetLocale)
	return fmt.Sprintf(`# Role
You are a professional localization reviewer for %s.

# Task
The user message contains positionally aligned "originals" and "translations" arrays. Evaluate the full set of translations as a whole against these criteria:
- Accuracy: the meaning of each original is fully preserved.
- Fluency: each translation reads like native %s, not a calque.
- Cultural fit: references and idioms suit the target culture.
- Marketing tone: persuasive copy stays persuasive without exaggeration.
- Consistency: recurring terms are translated the same way throughout.
- Completeness: nothing is omitted, truncated, or left untranslated.

# Format
Return a valid JSON object: { "score": <integer 0-100>, "notes": "<one or two sentences on the main strengths and problems>" }
Do NOT wrap the JSON in Markdown code blocks.`, targetName, targetName)
}

// splitTranslations splits a delimiter-joined response and enforces the
// count contract.
func splitTranslations(content string, expected int) ([]string, error) {
	// The delimiter carries one newline on each side. Trim only that framing
	// so whitespace inside a translation survives verbatim.
	parts := strings.Split(content, strings.TrimSpace(batchDelimiter))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.Trim(part, "\r\n"))
	}
	if len(out) != expected {
		return nil, &localeflow.CountMismatchError{Expected: expected, Got: len(out)}
	}
	return out, nil
}

// parseReview extracts {score, notes} from the model response. Any parse
// problem degrades to a review_failed result so the calling job can still
// complete, just without a completion marker.
func parseReview(content string) ReviewResult {
	var parsed struct {
		Score *float64 `json:"score"`
		Notes string   `json:"notes"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ReviewResult{
			Score:  0,
			Status: localeflow.ReviewFailed,
			Notes:  fmt.Sprintf("unparseable review response: %v", err),
		}
	}
	if parsed.Score == nil {
		return ReviewResult{
			Score:  0,
			Status: localeflow.ReviewFailed,
			Notes:  "review response missing score",
		}
	}

	score := int(*parsed.Score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return ReviewResult{
		Score:  score,
		Status: localeflow.ReviewStatusForScore(score),
		Notes:  parsed.Notes,
	}
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
