package loom

import (
	"context"
	"sync"
)

// ParallelCacheLookup resolves resource bundle entries against the
// translation memory in parallel, one goroutine per unique entry.
// Returns a map of entry hash to cached translation, and the unique
// cache misses in first-seen order.
func ParallelCacheLookup(cache TranslationCache, entries []string, targetLang string) (map[string]string, []string) {
	resolved := make(map[string]string)

	// Deduplicate entries by hash first
	uniq := make(map[string]string, len(entries))
	var order []string
	for _, entry := range entries {
		hash := HashText(entry)
		if _, ok := uniq[hash]; !ok {
			uniq[hash] = entry
			order = append(order, hash)
		}
	}

	if cache == nil || len(entries) == 0 {
		misses := make([]string, len(order))
		for i, hash := range order {
			misses[i] = uniq[hash]
		}
		return resolved, misses
	}

	type lookupResult struct {
		hash  string
		value string
		found bool
	}

	results := make(chan lookupResult, len(uniq))
	var wg sync.WaitGroup

	for hash := range uniq {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			if val, ok := cache.Get(CacheKey(h, targetLang)); ok {
				results <- lookupResult{hash: h, value: val, found: true}
			} else {
				results <- lookupResult{hash: h, found: false}
			}
		}(hash)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	missed := make(map[string]bool)
	for r := range results {
		if r.found {
			resolved[r.hash] = r.value
		} else {
			missed[r.hash] = true
		}
	}

	var misses []string
	for _, hash := range order {
		if missed[hash] {
			misses = append(misses, uniq[hash])
		}
	}
	return resolved, misses
}

// ParallelTranslator is a translator that uses parallel translation
// memory lookups for large resource bundles.
type ParallelTranslator struct {
	*Translator
	parallelThreshold int // Minimum bundle entries to trigger parallel lookup
}

// NewParallelTranslator creates a translator with parallel cache lookups.
func NewParallelTranslator(targetLang string, provider AIProvider, opts ...TranslatorOption) *ParallelTranslator {
	return &ParallelTranslator{
		Translator:        NewTranslator(targetLang, provider, opts...),
		parallelThreshold: 5, // Use parallel for 5+ entries
	}
}

// WithParallelThreshold sets the minimum bundle size for parallel lookup.
func (t *ParallelTranslator) WithParallelThreshold(n int) *ParallelTranslator {
	t.parallelThreshold = n
	return t
}

// TranslateBatchParallel resolves a resource bundle using parallel
// cache lookups. The returned slice is aligned with entries, ready for
// Recompose. This is an exported method for advanced use cases.
func (t *ParallelTranslator) TranslateBatchParallel(ctx context.Context, entries []string) ([]string, int, int, error) {
	if t.cache == nil || len(entries) < t.parallelThreshold {
		// Fall back to sequential for small batches or no cache
		return t.translateBatch(ctx, entries)
	}

	resolved, misses := ParallelCacheLookup(t.cache, entries, t.targetLang)

	cachedCount := 0
	for _, entry := range entries {
		if _, ok := resolved[HashText(entry)]; ok {
			cachedCount++
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
			_ = t.cache.Set(CacheKey(hash, t.targetLang), results[i])
			translatedCount++
		}
	}

	out := make([]string, len(entries))
	for i, entry := range entries {
		if val, ok := resolved[HashText(entry)]; ok {
			out[i] = val
		} else {
			out[i] = entry
		}
	}
	return out, cachedCount, translatedCount, nil
}
