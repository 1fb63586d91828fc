package loom

import "fmt"

// Verb classifies how a current source value relates to the value
// recorded when it was last translated.
type Verb string

const (
	// VerbNew marks a value with no usable counterpart: it must be
	// translated from scratch.
	VerbNew Verb = "new"
	// VerbChanged marks a value whose counterpart differs: the old
	// translation is a starting point but needs review.
	VerbChanged Verb = "changed"
	// VerbCurrent marks a value identical to its counterpart: the old
	// translation can be reused as is.
	VerbCurrent Verb = "current"
)

// similarityCutoff is the quick-ratio score a reorder-mode candidate
// must exceed to classify CHANGED instead of NEW.
const similarityCutoff = 0.5

// ValueType identifies the payload kind of a mapped field.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeText   ValueType = "text"
	TypeHTML   ValueType = "html"
	TypeURL    ValueType = "url"
)

// ValueMapping relates one source value to its best counterpart in the
// recorded target list. TargetIndex is -1 (and TargetValue empty) when
// no counterpart exists.
type ValueMapping struct {
	Name  string    `json:"name,omitempty"`
	Label string    `json:"label,omitempty"`
	Type  ValueType `json:"type,omitempty"`

	SourceValue string `json:"source_value"`
	TargetValue string `json:"target_value,omitempty"`
	Verb        Verb   `json:"verb"`
	SourceIndex int    `json:"source_index"`
	TargetIndex int    `json:"target_index"`
}

// Mappings is an ordered list of value mappings, one per source value.
type Mappings []ValueMapping

// Stats summarizes a mapping list by verb.
type Stats struct {
	New     int
	Changed int
	Current int
}

// Stats counts mappings per verb.
func (m Mappings) Stats() Stats {
	var s Stats
	for _, v := range m {
		switch v.Verb {
		case VerbNew:
			s.New++
		case VerbChanged:
			s.Changed++
		case VerbCurrent:
			s.Current++
		}
	}
	return s
}

// HasChanges reports whether any mapping needs translator attention.
func (m Mappings) HasChanges() bool {
	for _, v := range m {
		if v.Verb != VerbCurrent {
			return true
		}
	}
	return false
}

// NeedsTranslation returns the source values that cannot reuse an old
// translation unchanged: everything classified NEW or CHANGED.
func (m Mappings) NeedsTranslation() []string {
	var out []string
	for _, v := range m {
		if v.Verb != VerbCurrent {
			out = append(out, v.SourceValue)
		}
	}
	return out
}

// MapValues classifies every source value against the target list,
// returning one mapping per source value in source order.
//
// With allowReorder false the two lists are aligned positionally by an
// opcode-based sequence diff: equal runs map CURRENT, replaced runs map
// CHANGED up to the shorter run's length with excess source values NEW,
// and deleted runs map NEW. Target-only values contribute nothing.
//
// With allowReorder true each source value is classified independently:
// the first exact match anywhere in target is CURRENT; otherwise the
// best quick-ratio candidate above the similarity cutoff is CHANGED,
// and NEW if no candidate clears it. Matched targets stay available to
// later source values.
func MapValues(source, target []string, allowReorder bool) Mappings {
	if allowReorder {
		return mapReordered(source, target)
	}
	return mapAligned(source, target)
}

func mapAligned(source, target []string) Mappings {
	out := make(Mappings, 0, len(source))
	for _, op := range opcodes(source, target) {
		switch op.Tag {
		case opEqual:
			for k := 0; k < op.I2-op.I1; k++ {
				out = append(out, ValueMapping{
					SourceValue: source[op.I1+k],
					TargetValue: target[op.J1+k],
					Verb:        VerbCurrent,
					SourceIndex: op.I1 + k,
					TargetIndex: op.J1 + k,
				})
			}
		case opDelete:
			for i := op.I1; i < op.I2; i++ {
				out = append(out, ValueMapping{
					SourceValue: source[i],
					Verb:        VerbNew,
					SourceIndex: i,
					TargetIndex: -1,
				})
			}
		case opReplace:
			overlap := op.I2 - op.I1
			if w := op.J2 - op.J1; w < overlap {
				overlap = w
			}
			for k := 0; k < overlap; k++ {
				out = append(out, ValueMapping{
					SourceValue: source[op.I1+k],
					TargetValue: target[op.J1+k],
					Verb:        VerbChanged,
					SourceIndex: op.I1 + k,
					TargetIndex: op.J1 + k,
				})
			}
			for i := op.I1 + overlap; i < op.I2; i++ {
				out = append(out, ValueMapping{
					SourceValue: source[i],
					Verb:        VerbNew,
					SourceIndex: i,
					TargetIndex: -1,
				})
			}
		}
	}
	return out
}

func mapReordered(source, target []string) Mappings {
	out := make(Mappings, 0, len(source))
	for i, sv := range source {
		m := ValueMapping{
			SourceValue: sv,
			Verb:        VerbNew,
			SourceIndex: i,
			TargetIndex: -1,
		}

		exact := -1
		for j, tv := range target {
			if tv == sv {
				exact = j
				break
			}
		}

		if exact >= 0 {
			m.Verb = VerbCurrent
			m.TargetValue = target[exact]
			m.TargetIndex = exact
		} else {
			best, bestScore := -1, 0.0
			for j, tv := range target {
				if score := quickRatio(sv, tv); score > bestScore {
					best, bestScore = j, score
				}
			}
			if best >= 0 && bestScore > similarityCutoff {
				m.Verb = VerbChanged
				m.TargetValue = target[best]
				m.TargetIndex = best
			}
		}

		out = append(out, m)
	}
	return out
}

// Field is one named, typed list of values extracted from the current
// document version.
type Field struct {
	Name   string    `json:"name"`
	Label  string    `json:"label,omitempty"`
	Type   ValueType `json:"type"`
	Values []string  `json:"values"`
}

// FieldMapping is the recorded snapshot of a field from the version
// that was last translated.
type FieldMapping struct {
	Name   string    `json:"name"`
	Label  string    `json:"label,omitempty"`
	Type   ValueType `json:"type"`
	Values []string  `json:"values"`
}

// MapOptions controls MapFields.
type MapOptions struct {
	// AllowReorder classifies values independently of position.
	AllowReorder bool
	// ListReorder permutes each recorded field's values before aligned
	// mapping: position i takes the recorded value at ListReorder[i].
	// Incompatible with AllowReorder.
	ListReorder []int
}

// MapFields diffs every current field against its recorded mapping by
// name. A field with no recorded counterpart maps entirely NEW. A field
// whose recorded type differs is a failure: returned immediately when
// errs is nil, otherwise captured per field and skipped, mirroring
// recomposition's collect-and-continue discipline.
func MapFields(fields []Field, recorded []FieldMapping, opts MapOptions, errs *FieldErrors) (Mappings, error) {
	if opts.AllowReorder && opts.ListReorder != nil {
		return nil, ErrReorderConflict
	}

	recByName := make(map[string]FieldMapping, len(recorded))
	for _, r := range recorded {
		recByName[r.Name] = r
	}

	var out Mappings
	for _, f := range fields {
		var target []string
		if rec, ok := recByName[f.Name]; ok {
			if rec.Type != f.Type {
				terr := &FieldTypeError{Field: f.Name, Recorded: rec.Type, Current: f.Type}
				if errs == nil {
					return nil, terr
				}
				*errs = append(*errs, &FieldError{Field: f.Name, Err: terr})
				continue
			}
			target = rec.Values
			if opts.ListReorder != nil {
				permuted, err := permute(target, opts.ListReorder)
				if err != nil {
					if errs == nil {
						return nil, &FieldError{Field: f.Name, Err: err}
					}
					*errs = append(*errs, &FieldError{Field: f.Name, Err: err})
					continue
				}
				target = permuted
			}
		}

		ms := MapValues(f.Values, target, opts.AllowReorder)
		for i := range ms {
			ms[i].Name = f.Name
			ms[i].Label = f.Label
			ms[i].Type = f.Type
		}
		out = append(out, ms...)
	}

	return out, nil
}

// permute applies order as a permutation of values.
func permute(values []string, order []int) ([]string, error) {
	if len(order) != len(values) {
		return nil, fmt.Errorf("list reorder has %d positions for %d values", len(order), len(values))
	}
	seen := make([]bool, len(values))
	out := make([]string, len(values))
	for i, from := range order {
		if from < 0 || from >= len(values) {
			return nil, fmt.Errorf("list reorder position %d out of range", from)
		}
		if seen[from] {
			return nil, fmt.Errorf("list reorder uses position %d twice", from)
		}
		seen[from] = true
		out[i] = values[from]
	}
	return out, nil
}
