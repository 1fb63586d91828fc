package loom

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigSpec is the serializable form of a decomposition policy. It is
// what a YAML config file unmarshals into; NewConfig compiles it into an
// immutable Config.
type ConfigSpec struct {
	// InlineTags flow with surrounding text instead of splitting it.
	InlineTags []string `yaml:"inline_tags"`
	// OpaqueTags are carried as unexpanded placeholders; their contents
	// are never visited.
	OpaqueTags []string `yaml:"opaque_tags"`
	// OpaqueDecomposableTags are carried as placeholders while their
	// contents are decomposed as independent translation units.
	OpaqueDecomposableTags []string `yaml:"opaque_decomposable_tags"`
	// AttributePolicy maps an attribute name to the tags it is exposed
	// on. The wildcard tag "*" admits the attribute on any element.
	AttributePolicy map[string][]string `yaml:"attribute_policy"`
	// SortAttributes renders attributes in name order instead of
	// document order.
	SortAttributes bool `yaml:"sort_attributes"`
	// CountEmptyDecomposable treats childless opaque-decomposable
	// placeholders as content, keeping otherwise-empty strings in the
	// resource bundle.
	CountEmptyDecomposable bool `yaml:"count_empty_decomposable"`
}

// Config is the compiled, immutable decomposition policy. Build one with
// NewConfig, DefaultConfig or LoadConfig and share it freely; a Config is
// safe for concurrent use and is never modified by the engine.
type Config struct {
	inline       map[string]bool
	opaque       map[string]bool
	decomposable map[string]bool
	// attrPolicy[name] is the set of tags the attribute survives on;
	// the "*" key marks a wildcard attribute.
	attrPolicy map[string]map[string]bool

	sortAttributes         bool
	countEmptyDecomposable bool
}

// DefaultSpec returns the policy spec used when no configuration is
// supplied: common inline phrasing tags, script/style opaque, no
// opaque-decomposable tags, and a small attribute policy covering
// user-visible attribute text.
func DefaultSpec() ConfigSpec {
	return ConfigSpec{
		InlineTags: []string{"a", "abbr", "b", "br", "em", "i", "small", "span", "strong", "sub", "sup", "u"},
		OpaqueTags: []string{"script", "style"},
		AttributePolicy: map[string][]string{
			"alt":         {"*"},
			"title":       {"*"},
			"placeholder": {"*"},
			"aria-label":  {"*"},
		},
	}
}

// DefaultConfig compiles DefaultSpec. The default spec is always valid,
// so no error is returned.
func DefaultConfig() *Config {
	cfg, err := NewConfig(DefaultSpec())
	if err != nil {
		panic("loom: default config spec is invalid: " + err.Error())
	}
	return cfg
}

// NewConfig validates and compiles a policy spec. Tag and attribute
// names are matched case-insensitively; they are lowered here once.
func NewConfig(spec ConfigSpec) (*Config, error) {
	cfg := &Config{
		inline:                 lowerSet(spec.InlineTags),
		opaque:                 lowerSet(spec.OpaqueTags),
		decomposable:           lowerSet(spec.OpaqueDecomposableTags),
		attrPolicy:             make(map[string]map[string]bool, len(spec.AttributePolicy)),
		sortAttributes:         spec.SortAttributes,
		countEmptyDecomposable: spec.CountEmptyDecomposable,
	}

	for name, tags := range spec.AttributePolicy {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return nil, &ConfigError{Message: "attribute policy contains an empty attribute name"}
		}
		cfg.attrPolicy[name] = lowerSet(tags)
	}

	for tag := range cfg.opaque {
		if cfg.decomposable[tag] {
			return nil, &ConfigError{Message: fmt.Sprintf("tag %q is both opaque and opaque-decomposable", tag)}
		}
		if cfg.inline[tag] {
			return nil, &ConfigError{Message: fmt.Sprintf("tag %q is both inline and opaque", tag)}
		}
	}

	return cfg, nil
}

// Validate reports whether s can be compiled into a Config. NewConfig
// performs the same checks; Validate is for callers assembling specs
// programmatically that want to fail before building anything.
func (s ConfigSpec) Validate() error {
	_, err := NewConfig(s)
	return err
}

// LoadConfig reads a YAML policy file and compiles it. Keys absent from
// the file keep their DefaultSpec values; keys present replace them
// wholesale.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Message: "cannot read config file", Cause: err}
	}

	spec := DefaultSpec()
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, &ConfigError{Message: "cannot parse config file", Cause: err}
	}

	return NewConfig(spec)
}

func lowerSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			set[n] = true
		}
	}
	return set
}

// isInline reports whether tag (already lowered) flows with text.
func (c *Config) isInline(tag string) bool { return c.inline[tag] }

// isOpaque reports whether tag is carried as an unexpanded placeholder.
func (c *Config) isOpaque(tag string) bool { return c.opaque[tag] }

// isOpaqueDecomposable reports whether tag is a placeholder whose
// contents form independent translation units.
func (c *Config) isOpaqueDecomposable(tag string) bool { return c.decomposable[tag] }

// attrAllowed reports whether the named attribute is exposed for
// translation on the given tag.
func (c *Config) attrAllowed(attr, tag string) bool {
	tags, ok := c.attrPolicy[strings.ToLower(attr)]
	if !ok {
		return false
	}
	return tags["*"] || tags[strings.ToLower(tag)]
}
