package provider

import (
	"context"
	"fmt"
)

// MockProvider is a canned-response provider for tests and demos. It
// records the requests it sees so tests can assert on what the pipeline
// sent.
type MockProvider struct {
	Translations map[string]string // Source entry to translation
	CallCount    int               // Translate invocations
	LastRequest  *TranslateRequest // Most recent request
}

var _ AIProvider = (*MockProvider)(nil)

// NewMockProvider returns a mock preloaded with a small English-Spanish
// table, including entries that exercise indexed placeholders.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                             "Hola",
			"World":                             "Mundo",
			"Hello World":                       "Hola Mundo",
			"Welcome to our site.":              "Bienvenido a nuestro sitio.",
			"The skies are <br#1 />blue.":       "Los cielos son <br#1 />azules.",
			"Click <a#1>here</a#1> to continue": "Haga clic <a#1>aquí</a#1> para continuar",
		},
	}
}

// Translate answers from the table; unknown entries come back bracketed
// so missing stubs are visible in test output.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.CallCount++
	m.LastRequest = &req

	out := make([]string, 0, len(req.Texts))
	for _, text := range req.Texts {
		if t, ok := m.Translations[text]; ok {
			out = append(out, t)
			continue
		}
		out = append(out, fmt.Sprintf("[%s]", text))
	}
	return out, nil
}

// Reset clears the recorded call count and request.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastRequest = nil
}
