package webcite

import "sort"

// Field names used throughout the pipeline.
const (
	FieldType         = "type"
	FieldKey          = "key"
	FieldAuthor       = "author"
	FieldTitle        = "title"
	FieldJournal      = "journal"
	FieldVolume       = "volume"
	FieldNumber       = "number"
	FieldPages        = "pages"
	FieldYear         = "year"
	FieldDOI          = "doi"
	FieldURL          = "url"
	FieldHowPublished = "howpublished"
	FieldKeywords     = "keywords"
	FieldURLDate      = "urldate"
)

type fieldValue struct {
	value       string
	placeholder bool
}

// Fields is the mutable record of bibliographic fields for one capture.
//
// A field is unset, a placeholder ("not applicable for this entry") or
// concrete. Placeholders count as defined, so fallback extractors skip them,
// but they render as empty. A concrete value is never the empty string.
//
// The zero value is ready to use. Fields is not safe for concurrent use.
type Fields struct {
	m map[string]fieldValue
}

// NewFields returns an empty field store.
func NewFields() *Fields {
	return &Fields{m: make(map[string]fieldValue)}
}

// Get returns the concrete value of a field.
func (f *Fields) Get(name string) (string, bool) {
	return f.Lookup(name, false)
}

// Lookup returns the value of a field. A placeholder is reported as
// ("", true) only when includePlaceholder is set.
func (f *Fields) Lookup(name string, includePlaceholder bool) (string, bool) {
	v, ok := f.m[name]
	if !ok {
		return "", false
	}
	if v.placeholder {
		return "", includePlaceholder
	}
	return v.value, true
}

// Value returns the concrete value of a field or the empty string.
func (f *Fields) Value(name string) string {
	v, _ := f.Get(name)
	return v
}

// Set stores a concrete value, overwriting whatever was there.
// Empty values are ignored.
func (f *Fields) Set(name, value string) {
	if value == "" {
		return
	}
	if f.m == nil {
		f.m = make(map[string]fieldValue)
	}
	f.m[name] = fieldValue{value: value}
}

// SetIfUnset stores value only if the field is neither concrete nor a
// placeholder. It reports whether the value was stored.
func (f *Fields) SetIfUnset(name, value string) bool {
	if value == "" || f.Defined(name) {
		return false
	}
	f.Set(name, value)
	return true
}

// SetPlaceholder marks a field as deliberately not applicable.
func (f *Fields) SetPlaceholder(name string) {
	if f.m == nil {
		f.m = make(map[string]fieldValue)
	}
	f.m[name] = fieldValue{placeholder: true}
}

// Unset removes a field.
func (f *Fields) Unset(name string) {
	delete(f.m, name)
}

// Defined reports whether a field is concrete or a placeholder.
func (f *Fields) Defined(name string) bool {
	_, ok := f.m[name]
	return ok
}

// IsPlaceholder reports whether a field is a placeholder.
func (f *Fields) IsPlaceholder(name string) bool {
	v, ok := f.m[name]
	return ok && v.placeholder
}

// Names returns the names of all defined fields in sorted order.
func (f *Fields) Names() []string {
	names := make([]string, 0, len(f.m))
	for name := range f.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the concrete fields as a plain map.
// Placeholders are omitted.
func (f *Fields) Snapshot() map[string]string {
	out := make(map[string]string, len(f.m))
	for name, v := range f.m {
		if !v.placeholder {
			out[name] = v.value
		}
	}
	return out
}
