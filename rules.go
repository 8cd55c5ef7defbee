package webcite

import "regexp"

// Rules is the declarative configuration of the generic regex extractor:
// for each field, an ordered list of patterns tried against the page
// content. The first capture group of the first matching pattern wins.
type Rules struct {
	// Version identifies the rule set revision.
	Version int `toml:"version"`

	// Encoding is the character encoding the patterns expect page content
	// in. Empty means detect from the page.
	Encoding string `toml:"encoding"`

	Fields []FieldRule `toml:"field"`
}

// FieldRule lists the patterns for one field.
type FieldRule struct {
	Field    string   `toml:"name"`
	Patterns []string `toml:"patterns"`
}

// Validate returns an error if a rule is malformed or a pattern does not
// compile.
func (r *Rules) Validate() error {
	seen := make(map[string]bool, len(r.Fields))
	for _, fr := range r.Fields {
		if fr.Field == "" {
			return Errorf(EINVALID, "rule field name required")
		}
		if seen[fr.Field] {
			return Errorf(EINVALID, "duplicate rule for field %q", fr.Field)
		}
		seen[fr.Field] = true
		for _, p := range fr.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return Errorf(EINVALID, "invalid pattern for %s: %v", fr.Field, err)
			}
			if re.NumSubexp() < 1 {
				return Errorf(EINVALID, "pattern for %s has no capture group: %s", fr.Field, p)
			}
		}
	}
	return nil
}

// FieldNames returns the configured field names in rule order.
func (r *Rules) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for _, fr := range r.Fields {
		names = append(names, fr.Field)
	}
	return names
}
