// Package loom provides a round-trip HTML translation engine.
//
// Loom decomposes a markup document into a resource bundle of
// translator-facing strings, each mixing escaped text with indexed
// placeholder tags like <b#1>...</b#1>. Translators (human or AI) may
// reorder the placeholders and edit eligible attribute text, but may
// not add or remove tags. Recomposition parses each translated string
// strictly, verifies every placeholder, and splices the result back
// into the original tree, isolating failures per string.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/loom"
//	    "github.com/ZaguanLabs/loom/cache"
//	    "github.com/ZaguanLabs/loom/markup"
//	    "github.com/ZaguanLabs/loom/provider"
//	)
//
//	func main() {
//	    // Create provider
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    // Create translator
//	    t := loom.NewTranslator("es_ES", p,
//	        loom.WithCache(cache.NewInMemoryCache(3600)),
//	        loom.WithCodec(markup.NewCodec()),
//	    )
//
//	    // Translate HTML
//	    result, err := t.ProcessHTML(context.Background(), "<p>The skies are <br />blue.</p>")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content)
//	}
//
// The engine layers are usable without the Translator as well: Decompose
// produces a Context whose Bundle crosses any translation boundary you
// like, and Context.Recompose applies the strings that come back.
package loom
