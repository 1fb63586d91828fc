package loom

// TranslationStyle is the register translations are written in. The
// provider receives a prose description of it; see GetStyleDescription.
type TranslationStyle string

const (
	StyleFormal    TranslationStyle = "formal"    // official documents
	StyleNeutral   TranslationStyle = "neutral"   // the default
	StyleCasual    TranslationStyle = "casual"    // blogs, social media
	StyleMarketing TranslationStyle = "marketing" // promotional copy
	StyleTechnical TranslationStyle = "technical" // manuals, reference docs
)

// DocumentCodec converts between raw markup text and the node tree the
// engine operates on. Parse is tolerant, suited to real-world documents;
// the engine's own strict parsing of translated strings is separate and
// not part of this interface.
type DocumentCodec interface {
	// Parse reads markup into a tree. The tree may contain NodeList
	// wrappers; Decompose normalizes them away.
	Parse(text string) (Node, error)

	// Render serializes a (possibly recomposed) tree back to markup.
	Render(tree Node) (string, error)

	// ContentType names the format this codec handles, e.g. "html".
	ContentType() string
}

// ProcessedContent is the result of a document translation.
type ProcessedContent struct {
	Content         string     // Recomposed document markup
	TranslatedCount int        // Bundle entries newly translated by the provider
	CachedCount     int        // Bundle entries served from the translation memory
	TotalItems      int        // Resource bundle entries found in the document
	ItemErrors      ItemErrors // Entries whose translations failed to recompose
}

// RTLLanguages holds the ISO 639-1 codes of languages written right to
// left. GetDirection and IsRTL consult it keyed on the lowercased base
// language, so "ar_SA" and "ar" both match.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"fa": true, // Persian
	"he": true, // Hebrew
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"ur": true, // Urdu
}
