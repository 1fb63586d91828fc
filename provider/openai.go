package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/loom"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.3
)

// OpenAIProvider translates resource bundles through OpenAI chat
// completions in JSON mode.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

var _ AIProvider = (*OpenAIProvider)(nil)

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // API key
	Model       string  // Model name, defaultModel when empty
	Temperature float32 // Sampling temperature, defaultTemperature when zero
	BaseURL     string  // Alternate endpoint, for proxies and compatible servers
}

// NewOpenAIProvider creates a provider from cfg, applying its defaults.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	p := &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.temperature == 0 {
		p.temperature = defaultTemperature
	}
	return p
}

// Translate sends one batch of bundle entries and returns the
// translations in input order.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &loom.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &loom.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	targetName := loom.GetLanguageName(req.TargetLang)

	var b strings.Builder

	fmt.Fprintf(&b, `# Role
You are an expert native translator. You translate content to %s with the fluency and nuance of a highly educated native speaker.`, targetName)

	b.WriteString("\n\n# Context\n")
	if req.Context != "" {
		fmt.Fprintf(&b, "The content is for: %s. Adapt the tone to be appropriate for this context.", req.Context)
	} else {
		b.WriteString("The content is general web content.")
	}

	fmt.Fprintf(&b, "\n\n# Register\n%s", loom.GetStyleDescription(req.Style))

	fmt.Fprintf(&b, `

# Task
Translate the provided texts into idiomatic %s. Each text may contain indexed markup placeholders such as <a#1>, <b#2> or <br#3 />.`, targetName)

	b.WriteString(`

# Placeholder Rules
- Every placeholder tag carries a # index (e.g. <a#1>link</a#1>, <br#2 />). Reproduce each placeholder EXACTLY as written, including the #N suffix.
- You may move placeholders to wherever the target grammar needs them, but never add, drop, duplicate, or renumber them.
- Keep attribute names and tag names untouched. Translate only the quoted values of human-facing attributes (alt, title, placeholder, aria-label).
- Comments of the form <!-- I18N: ... --> are instructions addressed to you. Follow them, then omit the comment from your output.`)

	fmt.Fprintf(&b, `

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound completely natural to a native speaker.
- **Vocabulary**: Use precise, culturally relevant terminology. Avoid awkward "translationese" or robotic phrasing.
- **Tone**: Maintain the original intent but adapt the wording to fit the target culture's expectations.
- **Idioms**: Never translate idioms literally. Replace English idioms with natural %s equivalents.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Preserve meaningful whitespace (leading/trailing spaces, multiple spaces, newlines). Use idiomatic punctuation for the target language.`, targetName)

	if hint := loom.GetLocaleClarification(req.TargetLang); hint != "" {
		fmt.Fprintf(&b, "\n- **Locale**: %s", hint)
	}

	if len(req.Glossary) > 0 {
		b.WriteString("\n\n# Glossary\nWhen you encounter these phrases, prefer these translations (unless context demands otherwise):")
		for source, target := range req.Glossary {
			fmt.Fprintf(&b, "\n- \"%s\" → %s", source, target)
		}
	}

	fmt.Fprintf(&b, "\n\n# Quality Check\nAfter translating each string, verify it sounds like native %s and not a calque, and that every placeholder from the source appears exactly once in your output. If any phrase sounds like a literal translation, rewrite it naturally.", targetName)

	b.WriteString(`

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
- Do NOT wrap in Markdown code blocks.
- Do NOT include any <!-- I18N: ... --> comments in your output.`)

	if len(req.ExcludedTerms) > 0 {
		fmt.Fprintf(&b, "\n\n# Exclusions\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- %s",
			strings.Join(req.ExcludedTerms, "\n- "))
	}

	return b.String()
}

// buildUserMessage is the bundle itself, as a JSON array.
func (p *OpenAIProvider) buildUserMessage(req TranslateRequest) string {
	data, _ := json.Marshal(req.Texts)
	return string(data)
}

// parseResponse recovers the translation array from a model response.
func (p *OpenAIProvider) parseResponse(content string, want int) ([]string, error) {
	arr := extractArray([]byte(content))
	if arr == nil {
		return nil, &loom.ProviderError{
			Message:   "invalid response format from OpenAI",
			Retryable: false,
		}
	}
	return coerceStrings(arr, want)
}

// extractArray digs the translation list out of a response: the
// documented {"translations": [...]} shape, any other object carrying an
// array value, or a bare array.
func extractArray(data []byte) []interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err == nil {
		if arr, ok := obj["translations"].([]interface{}); ok {
			return arr
		}
		for _, v := range obj {
			if arr, ok := v.([]interface{}); ok {
				return arr
			}
		}
		return nil
	}

	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr
	}
	return nil
}

// coerceStrings renders the array as strings; models occasionally return
// bare numbers for numeric source texts.
func coerceStrings(arr []interface{}, want int) ([]string, error) {
	if len(arr) != want {
		return nil, &loom.CountMismatchError{Expected: want, Got: len(arr)}
	}

	out := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			out[i] = s
			continue
		}
		out[i] = fmt.Sprintf("%v", v)
	}
	return out, nil
}

// isRetryableError classifies transport-level failures worth retrying.
func isRetryableError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"rate limit", "timeout", "connection refused", "temporary", "503", "502", "429"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
