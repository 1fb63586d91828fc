package loom

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Translator drives the document pipeline: parse through a codec,
// decompose into a resource bundle, translate the bundle through an AI
// provider with the translation memory in front, then recompose and
// render.
type Translator struct {
	targetLang    string
	sourceLang    string
	provider      AIProvider
	cache         TranslationCache
	cfg           *Config
	codecs        map[string]DocumentCodec
	excludedTerms []string
	context       string
	glossary      map[string]string
	style         TranslationStyle
}

// AIProvider is the interface for AI translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
// Texts are resource bundle entries: escaped text interleaved with
// indexed placeholder tags that the provider must preserve.
type TranslateRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string
	ExcludedTerms []string
	Context       string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for the translation memory.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang overrides the source language (default "en").
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache attaches a translation memory.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithConfig sets the decomposition policy. Nil keeps the default.
func WithConfig(cfg *Config) TranslatorOption {
	return func(t *Translator) {
		if cfg != nil {
			t.cfg = cfg
		}
	}
}

// WithCodec registers a document codec.
func WithCodec(codec DocumentCodec) TranslatorOption {
	return func(t *Translator) {
		t.codecs[codec.ContentType()] = codec
	}
}

// WithExcludedTerms names terms the provider must leave untranslated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.excludedTerms = terms
	}
}

// WithContext supplies domain context passed to the provider with every
// request.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithGlossary pins preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithStyle selects the register translations are written in.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *Translator) {
		t.style = style
	}
}

// NewTranslator builds a Translator into targetLang backed by provider.
// The source language defaults to English and the decomposition policy
// to DefaultConfig; options override both and register codecs.
func NewTranslator(targetLang string, provider AIProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: targetLang,
		sourceLang: "en",
		provider:   provider,
		cfg:        DefaultConfig(),
		style:      StyleNeutral,
		codecs:     make(map[string]DocumentCodec),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Process translates a document of the specified content type.
//
// Recomposition is best effort: entries whose translations fail to
// recompose keep their original content and are reported in the
// result's ItemErrors. When that happens Process returns both the
// partial result and the last item error, so a caller may inspect
// either.
func (t *Translator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	// Skip if source == target
	if t.IsSourceLang() {
		return &ProcessedContent{Content: content}, nil
	}

	codec, ok := t.codecs[contentType]
	if !ok {
		return nil, &CodecError{
			Message:     "no codec registered for content type",
			ContentType: contentType,
		}
	}

	tree, err := codec.Parse(content)
	if err != nil {
		return nil, &CodecError{
			Message:     "cannot parse document",
			Cause:       err,
			ContentType: contentType,
		}
	}

	dctx := Decompose(tree, t.cfg)
	bundle := dctx.Bundle()
	if len(bundle) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	translations, cachedCount, translatedCount, err := t.translateBatch(ctx, bundle)
	if err != nil {
		return nil, err
	}

	var items ItemErrors
	recErr := dctx.Recompose(translations, &items)

	rendered, err := codec.Render(dctx.Root())
	if err != nil {
		return nil, &CodecError{
			Message:     "cannot render document",
			Cause:       err,
			ContentType: contentType,
		}
	}

	if contentType == "html" {
		rendered = t.setHTMLAttributes(rendered)
	}

	result := &ProcessedContent{
		Content:         rendered,
		TranslatedCount: translatedCount,
		CachedCount:     cachedCount,
		TotalItems:      len(bundle),
		ItemErrors:      items,
	}
	if recErr != nil {
		return result, recErr
	}
	return result, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.Process(ctx, html, "html")
}

// translateBatch resolves each resource bundle entry, from the
// translation memory where possible, through the provider otherwise.
// The returned slice is aligned with entries.
func (t *Translator) translateBatch(ctx context.Context, entries []string) ([]string, int, int, error) {
	resolved := make(map[string]string)
	var misses []string
	seenMiss := make(map[string]bool)
	cachedCount := 0

	for _, entry := range entries {
		hash := HashText(entry)

		if t.cache != nil {
			if cached, ok := t.cache.Get(CacheKey(hash, t.targetLang)); ok {
				resolved[hash] = cached
				cachedCount++
				continue
			}
		}

		// Deduplicate cache misses
		if !seenMiss[hash] {
			seenMiss[hash] = true
			misses = append(misses, entry)
		}
	}

	translatedCount := 0
	if len(misses) > 0 && t.provider != nil {
		results, err := t.provider.Translate(ctx, TranslateRequest{
			Texts:         misses,
			TargetLang:    t.targetLang,
			SourceLang:    t.sourceLang,
			ExcludedTerms: t.excludedTerms,
			Context:       t.context,
			Glossary:      t.glossary,
			Style:         t.style,
		})
		if err != nil {
			return nil, 0, 0, err
		}
		if len(results) != len(misses) {
			return nil, 0, 0, &CountMismatchError{Expected: len(misses), Got: len(results)}
		}

		for i, entry := range misses {
			hash := HashText(entry)
			resolved[hash] = results[i]
			if t.cache != nil {
				_ = t.cache.Set(CacheKey(hash, t.targetLang), results[i]) // Ignore cache set errors
			}
			translatedCount++
		}
	}

	out := make([]string, len(entries))
	for i, entry := range entries {
		if val, ok := resolved[HashText(entry)]; ok {
			out[i] = val
		} else {
			out[i] = entry // no provider: identity translation
		}
	}
	return out, cachedCount, translatedCount, nil
}

// setHTMLAttributes stamps lang and dir on the document element so the
// translated page declares its language and text direction.
func (t *Translator) setHTMLAttributes(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	root := doc.Find("html")
	if root.Length() == 0 {
		return html
	}
	root.SetAttr("lang", ToHTMLLang(t.targetLang))
	root.SetAttr("dir", GetDirection(t.targetLang))

	out, err := doc.Html()
	if err != nil {
		return html
	}
	return out
}

// Read-side accessors, mostly for the CLI and templates.

func (t *Translator) TargetLang() string          { return t.targetLang }
func (t *Translator) SourceLang() string          { return t.sourceLang }
func (t *Translator) Config() *Config             { return t.cfg }
func (t *Translator) Glossary() map[string]string { return t.glossary }
func (t *Translator) Style() TranslationStyle     { return t.style }
func (t *Translator) Context() string             { return t.context }
func (t *Translator) ExcludedTerms() []string     { return t.excludedTerms }

// langOrTarget resolves the optional language override accepted by the
// inspection helpers.
func (t *Translator) langOrTarget(override []string) string {
	if len(override) > 0 && override[0] != "" {
		return override[0]
	}
	return t.targetLang
}

// IsSourceLang reports whether translating would be a no-op because the
// target language (or the optional override) shares the source's base
// language.
func (t *Translator) IsSourceLang(targetLangOverride ...string) bool {
	return normalizeBaseLang(t.langOrTarget(targetLangOverride)) == normalizeBaseLang(t.sourceLang)
}

// IsRTL reports whether the target language (or the optional override)
// is written right to left.
func (t *Translator) IsRTL(targetLangOverride ...string) bool {
	return IsRTL(t.langOrTarget(targetLangOverride))
}

// GetDir returns "ltr" or "rtl" for the target language (or the
// optional override).
func (t *Translator) GetDir(targetLangOverride ...string) string {
	return GetDirection(t.langOrTarget(targetLangOverride))
}

// normalizeBaseLang reduces a locale to its lowercased base language
// ("en" from "en_US").
func normalizeBaseLang(lang string) string {
	base, _, _ := strings.Cut(lang, "_")
	return strings.ToLower(base)
}
