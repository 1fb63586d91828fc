// Command loom translates HTML documents using AI, carrying the markup
// through translation as indexed placeholders.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/loom"
	"github.com/ZaguanLabs/loom/cache"
	"github.com/ZaguanLabs/loom/markup"
	"github.com/ZaguanLabs/loom/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = loom.Version
	commit    = loom.GitCommit
	buildDate = loom.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "loom: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("loom", flag.ContinueOnError)
	fs.SetOutput(stderr)

	targetLang := fs.String("lang", "", "Target language code, e.g. es_ES or ja_JP")
	sourceLang := fs.String("source", "en", "Source language code")
	output := fs.String("output", "", "Write the result to this file instead of stdout")
	outputShort := fs.String("o", "", "Short form of --output")
	apiKey := fs.String("api-key", "", "OpenAI API key (falls back to OPENAI_API_KEY)")
	model := fs.String("model", "gpt-4o-mini", "OpenAI model")
	contextStr := fs.String("context", "", "Domain context for the translator, e.g. 'E-commerce website'")
	exclude := fs.String("exclude", "", "Comma-separated terms to keep untranslated")
	style := fs.String("style", "", "Register: formal, neutral, casual, marketing, or technical")
	cacheTTL := fs.Int("cache-ttl", 3600, "Cache TTL in seconds (0 to disable)")
	memoryPath := fs.String("memory", "", "SQLite translation memory file (persists across runs)")
	configPath := fs.String("config", "", "YAML file overriding the markup decomposition config")
	rpm := fs.Int("rpm", 0, "Rate limit in requests per minute (0 = unlimited)")
	showVersion := fs.Bool("version", false, "Show version")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	extract := fs.Bool("extract", false, "Print the resource bundle without calling the API")
	applyFile := fs.String("apply", "", "Apply translations from a JSON file instead of calling the API")
	diffFile := fs.String("diff", "", "Compare with a previous version and show what needs retranslation")
	reorder := fs.Bool("reorder", false, "With --diff, match entries regardless of position")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		printVersion(stdout)
		return nil
	}

	// -o is an alias for --output
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	if *targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}

	input, inputName, err := readInput(fs)
	if err != nil {
		return err
	}

	// Decomposition config
	cfg := loom.DefaultConfig()
	if *configPath != "" {
		cfg, err = loom.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Offline modes need no provider
	switch {
	case *extract:
		return runExtract(input, inputName, *targetLang, cfg, stdout, *jsonOutput)
	case *diffFile != "":
		return runDiff(input, *diffFile, inputName, *targetLang, cfg, stdout, *jsonOutput, *reorder)
	case *applyFile != "":
		return runApply(input, *applyFile, cfg, *output, stdout, stderr, *quiet)
	}

	key, err := resolveAPIKey(*apiKey)
	if err != nil {
		return err
	}

	ai := newProvider(key, *model, *rpm)

	// Translation memory
	var memory loom.TranslationCache
	if *memoryPath != "" {
		sq, err := cache.NewSQLiteCache(*memoryPath, *cacheTTL)
		if err != nil {
			return fmt.Errorf("opening translation memory: %w", err)
		}
		defer sq.Close()
		memory = sq
	} else if *cacheTTL > 0 {
		memory = cache.NewInMemoryCache(*cacheTTL)
	}

	opts := []loom.TranslatorOption{
		loom.WithSourceLang(*sourceLang),
		loom.WithConfig(cfg),
		loom.WithCodec(markup.NewCodec()),
	}
	if memory != nil {
		opts = append(opts, loom.WithCache(memory))
	}
	if *contextStr != "" {
		opts = append(opts, loom.WithContext(*contextStr))
	}
	if *style != "" {
		opts = append(opts, loom.WithStyle(loom.TranslationStyle(*style)))
	}
	if *exclude != "" {
		terms := strings.Split(*exclude, ",")
		for i := range terms {
			terms[i] = strings.TrimSpace(terms[i])
		}
		opts = append(opts, loom.WithExcludedTerms(terms))
	}

	translator := loom.NewTranslator(*targetLang, ai, opts...)

	if !*quiet {
		fmt.Fprintf(stderr, "Translating %s (%s -> %s)\n", inputName, *sourceLang, *targetLang)
	}

	start := time.Now()
	result, err := translator.ProcessHTML(context.Background(), input)
	if err != nil && result == nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	// Entries that failed to recompose keep their source text; report them
	// but still emit the document.
	for _, ie := range result.ItemErrors {
		fmt.Fprintf(stderr, "warning: %v\n", ie)
	}

	out, closeOut, err := openOutput(*output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	if *jsonOutput {
		return outputJSON(out, result, elapsed)
	}
	fmt.Fprint(out, result.Content)

	if !*quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Bundle entries: %d\n", result.TotalItems)
		fmt.Fprintf(stderr, "  Translated:     %d\n", result.TranslatedCount)
		fmt.Fprintf(stderr, "  From memory:    %d\n", result.CachedCount)
		if len(result.ItemErrors) > 0 {
			fmt.Fprintf(stderr, "  Failed:         %d\n", len(result.ItemErrors))
		}
	}

	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", loom.Name, version)
	if commit != "unknown" && commit != "" {
		fmt.Fprintf(w, "  commit:  %s\n", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", buildDate)
	}
}

// readInput loads the document from the first positional argument, or
// stdin when none is given.
func readInput(fs *flag.FlagSet) (content, name string, err error) {
	if fs.NArg() == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(path), nil
}

// resolveAPIKey prefers the flag value and falls back to the
// OPENAI_API_KEY environment variable.
func resolveAPIKey(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
}

// newProvider assembles the provider chain: OpenAI wrapped with retry,
// and with rate limiting when rpm is set.
func newProvider(apiKey, model string, rpm int) loom.AIProvider {
	p := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey: apiKey,
		Model:  model,
	})

	var ai loom.AIProvider = loom.NewRetryableProvider(p, loom.DefaultRetryConfig())
	if rpm > 0 {
		ai = loom.NewRateLimitedProvider(ai, loom.RateLimitConfig{RequestsPerMinute: rpm})
	}
	return ai
}

// openOutput returns the destination for the translated document: a
// created file when path is set, stdout otherwise. The closer is a
// no-op for stdout.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// runExtract prints the resource bundle a document decomposes into.
func runExtract(input, inputName, targetLang string, cfg *loom.Config, stdout io.Writer, jsonOut bool) error {
	tree, err := markup.ParseString(input)
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	bundle := loom.Decompose(tree, cfg).Bundle()

	if jsonOut {
		type extractOutput struct {
			InputFile  string   `json:"input_file"`
			TargetLang string   `json:"target_lang"`
			EntryCount int      `json:"entry_count"`
			Entries    []string `json:"entries"`
		}
		return writeJSON(stdout, extractOutput{
			InputFile:  inputName,
			TargetLang: targetLang,
			EntryCount: len(bundle),
			Entries:    bundle,
		})
	}

	fmt.Fprintf(stdout, "Extract: %s -> %s\n", inputName, targetLang)
	fmt.Fprintf(stdout, "Found %d translatable entries:\n\n", len(bundle))

	for i, entry := range bundle {
		fmt.Fprintf(stdout, "%3d. %q\n", i+1, clip(entry, 60))
	}

	return nil
}

// runApply recomposes a document from translations prepared offline.
// The translations file holds a JSON array (or an object with a
// "translations" key) with one entry per bundle string, in bundle order.
func runApply(input, translationsPath string, cfg *loom.Config, output string, stdout, stderr io.Writer, quiet bool) error {
	data, err := os.ReadFile(translationsPath) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("reading translations: %w", err)
	}

	translations, err := parseTranslations(data)
	if err != nil {
		return err
	}

	tree, err := markup.ParseString(input)
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	dctx := loom.Decompose(tree, cfg)

	var items loom.ItemErrors
	if err := dctx.Recompose(translations, &items); err != nil && len(items) == 0 {
		return fmt.Errorf("applying translations: %w", err)
	}

	// Failed entries keep their source text; report them but still emit
	// the document.
	for _, ie := range items {
		fmt.Fprintf(stderr, "warning: %v\n", ie)
	}

	rendered, err := markup.RenderString(dctx.Root())
	if err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}

	out, closeOut, err := openOutput(output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	fmt.Fprint(out, rendered)

	if !quiet {
		fmt.Fprintf(stderr, "\nApplied %d of %d translations\n", len(translations)-len(items), len(translations))
	}

	return nil
}

// parseTranslations accepts either a bare JSON array of strings or an
// object wrapping it under "translations", the shape AI providers return.
func parseTranslations(data []byte) ([]string, error) {
	var obj struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Translations != nil {
		return obj.Translations, nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, nil
	}

	return nil, fmt.Errorf("translations file must be a JSON array or an object with a %q key", "translations")
}

// runDiff compares the bundle of the new content with a previous version.
func runDiff(newContent, oldPath, inputName, targetLang string, cfg *loom.Config, stdout io.Writer, jsonOut, allowReorder bool) error {
	oldData, err := os.ReadFile(oldPath) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("reading previous version: %w", err)
	}

	oldTree, err := markup.ParseString(string(oldData))
	if err != nil {
		return fmt.Errorf("parsing previous version: %w", err)
	}
	newTree, err := markup.ParseString(newContent)
	if err != nil {
		return fmt.Errorf("parsing new version: %w", err)
	}

	oldBundle := loom.Decompose(oldTree, cfg).Bundle()
	newBundle := loom.Decompose(newTree, cfg).Bundle()

	mappings := loom.MapValues(newBundle, oldBundle, allowReorder)
	stats := mappings.Stats()

	if jsonOut {
		type diffStats struct {
			Current int `json:"current"`
			Changed int `json:"changed"`
			New     int `json:"new"`
		}
		type diffOutput struct {
			InputFile        string        `json:"input_file"`
			PreviousFile     string        `json:"previous_file"`
			TargetLang       string        `json:"target_lang"`
			Stats            diffStats     `json:"stats"`
			NeedsTranslation []string      `json:"needs_translation,omitempty"`
			Mappings         loom.Mappings `json:"mappings"`
		}
		return writeJSON(stdout, diffOutput{
			InputFile:        inputName,
			PreviousFile:     filepath.Base(oldPath),
			TargetLang:       targetLang,
			Stats:            diffStats{Current: stats.Current, Changed: stats.Changed, New: stats.New},
			NeedsTranslation: mappings.NeedsTranslation(),
			Mappings:         mappings,
		})
	}

	fmt.Fprintf(stdout, "Diff: %s vs %s\n", inputName, filepath.Base(oldPath))
	fmt.Fprintf(stdout, "Target language: %s\n\n", targetLang)

	fmt.Fprintf(stdout, "Summary:\n")
	fmt.Fprintf(stdout, "  Current: %d\n", stats.Current)
	fmt.Fprintf(stdout, "  Changed: %d\n", stats.Changed)
	fmt.Fprintf(stdout, "  New:     %d\n", stats.New)
	fmt.Fprintf(stdout, "\n")

	if !mappings.HasChanges() {
		fmt.Fprintf(stdout, "No changes detected. All translations are up to date.\n")
		return nil
	}

	fmt.Fprintf(stdout, "Needs translation: %d entries\n\n", len(mappings.NeedsTranslation()))

	for _, m := range mappings {
		switch m.Verb {
		case loom.VerbNew:
			fmt.Fprintf(stdout, "  + %q\n", clip(m.SourceValue, 50))
		case loom.VerbChanged:
			fmt.Fprintf(stdout, "  ~ %q -> %q\n", clip(m.TargetValue, 30), clip(m.SourceValue, 30))
		}
	}

	return nil
}

// clip shortens a string for display.
func clip(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// writeJSON pretty-prints v to w, the shape every --json mode shares.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	Content         string `json:"content"`
	TotalItems      int    `json:"total_items"`
	TranslatedCount int    `json:"translated_count"`
	CachedCount     int    `json:"cached_count"`
	FailedCount     int    `json:"failed_count,omitempty"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

// outputJSON writes the result as JSON.
func outputJSON(w io.Writer, result *loom.ProcessedContent, elapsed time.Duration) error {
	return writeJSON(w, JSONOutput{
		Content:         result.Content,
		TotalItems:      result.TotalItems,
		TranslatedCount: result.TranslatedCount,
		CachedCount:     result.CachedCount,
		FailedCount:     len(result.ItemErrors),
		ElapsedMs:       elapsed.Milliseconds(),
	})
}
