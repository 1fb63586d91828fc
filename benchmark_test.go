package loom_test

import (
	"context"
	"testing"

	"github.com/ZaguanLabs/loom"
	"github.com/ZaguanLabs/loom/cache"
	"github.com/ZaguanLabs/loom/markup"
	"github.com/ZaguanLabs/loom/provider"
)

// Benchmarks for performance validation

const benchSmallHTML = `<div><p>Hello World</p></div>`

const benchMediumHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<nav><a href="/">Home</a><a href="/about">About</a></nav>
	<main>
		<h1>Welcome to Our Site</h1>
		<p>This is a paragraph with <b>bold</b> and <i>italic</i> text.</p>
		<p>Another paragraph here.</p>
		<ul>
			<li>Item one</li>
			<li>Item two</li>
			<li>Item three</li>
		</ul>
	</main>
	<footer><p>Copyright 2024</p></footer>
</body>
</html>`

func BenchmarkHashText(b *testing.B) {
	const text = "Find the best products at great prices, delivered to your door."
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		loom.HashText(text)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	hash := loom.HashText("Hello World")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		loom.CacheKey(hash, "es_ES")
	}
}

func BenchmarkInMemoryCache(b *testing.B) {
	b.Run("Get", func(b *testing.B) {
		c := cache.NewInMemoryCache(3600)
		c.Set("a1c3:es_ES", "Hola")
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			c.Get("a1c3:es_ES")
		}
	})

	b.Run("Set", func(b *testing.B) {
		c := cache.NewInMemoryCache(3600)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			c.Set("a1c3:es_ES", "Hola")
		}
	})
}

func BenchmarkDecompose_Small(b *testing.B) {
	tree, err := markup.ParseString(benchSmallHTML)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loom.Decompose(tree, nil)
	}
}

func BenchmarkDecompose_Medium(b *testing.B) {
	tree, err := markup.ParseString(benchMediumHTML)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loom.Decompose(tree, nil)
	}
}

func BenchmarkRoundTrip(b *testing.B) {
	// A Context is single-use, so each iteration pays for both halves.
	tree, err := markup.ParseString(benchMediumHTML)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx := loom.Decompose(tree, nil)
		if err := ctx.Recompose(ctx.Bundle(), nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMapValues_Aligned(b *testing.B) {
	source := []string{"The skies are blue.", "Hello World", "Item one", "Item two"}
	target := []string{"The skies are grey.", "Hello World", "Item one", "Item three"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loom.MapValues(source, target, false)
	}
}

func BenchmarkMapValues_Reordered(b *testing.B) {
	source := []string{"The skies are blue.", "Hello World", "Item one", "Item two"}
	target := []string{"Item two", "Hello World", "The skies are blue", "Item one"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loom.MapValues(source, target, true)
	}
}

func BenchmarkTranslator_Process_Cached(b *testing.B) {
	p := provider.NewMockProvider()
	c := cache.NewInMemoryCache(3600)

	translator := loom.NewTranslator("es_ES", p,
		loom.WithCache(c),
		loom.WithCodec(markup.NewCodec()),
	)

	html := `<div><p>Hello</p><p>World</p></div>`
	translator.ProcessHTML(context.Background(), html) // prime the memory

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		translator.ProcessHTML(context.Background(), html)
	}
}

func BenchmarkTranslator_Process_Uncached(b *testing.B) {
	html := `<div><p>Hello</p><p>World</p></div>`

	for i := 0; i < b.N; i++ {
		// A fresh translator per iteration keeps the memory cold.
		translator := loom.NewTranslator("es_ES", provider.NewMockProvider(),
			loom.WithCodec(markup.NewCodec()),
		)
		translator.ProcessHTML(context.Background(), html)
	}
}

func BenchmarkLanguageLookups(b *testing.B) {
	langs := []string{"en_US", "es_ES", "ar_SA", "ja_JP", "he_IL"}

	b.Run("GetDirection", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			loom.GetDirection(langs[i%len(langs)])
		}
	})

	b.Run("GetLanguageName", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			loom.GetLanguageName(langs[i%len(langs)])
		}
	})
}
