package webcite

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

// recordTemplate is the fixed record layout. Each ${name} is a slot filled
// from the field store; a line whose slots are all empty is dropped.
var recordTemplate = []string{
	"@${type}{${key},",
	"  author = {${author}},",
	"  title = {${title}},",
	"  journal = {${journal}},",
	"  volume = {${volume}},",
	"  number = {${number}},",
	"  pages = {${pages}},",
	"  year = {${year}},",
	"  doi = {${doi}},",
	"  url = {${url}},",
	"  howpublished = {${howpublished}},",
	"  keywords = {${keywords}},",
	"  note = {Online; accessed ${urldate}},",
	"}",
}

// FieldOrder is the canonical order of field lines in a record.
var FieldOrder = []string{
	FieldAuthor,
	FieldTitle,
	FieldJournal,
	FieldVolume,
	FieldNumber,
	FieldPages,
	FieldYear,
	FieldDOI,
	FieldURL,
	FieldHowPublished,
	FieldKeywords,
	"note",
}

// internalFields are never emitted as field lines of their own.
var internalFields = map[string]bool{
	FieldType:    true,
	FieldKey:     true,
	FieldURLDate: true,
}

// verbatimFields are not escaped because their values are identifiers.
var verbatimFields = map[string]bool{
	FieldURL: true,
	FieldDOI: true,
}

// Format substitutes the field store into the record template.
// Unset and placeholder fields render as empty, and their lines are
// dropped. Concrete fields the template has no slot for are appended after
// the template fields in name order.
func Format(f *Fields) string {
	var b strings.Builder
	for i, line := range recordTemplate {
		if i == len(recordTemplate)-1 {
			writeExtraFields(&b, f)
		}

		var slots, empty int
		out := os.Expand(line, func(name string) string {
			slots++
			v, _ := f.Get(name)
			if v == "" {
				empty++
			}
			return v
		})
		if slots > 0 && slots == empty {
			continue
		}
		b.WriteString(out)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeExtraFields(b *strings.Builder, f *Fields) {
	known := make(map[string]bool, len(FieldOrder))
	for _, name := range FieldOrder {
		known[name] = true
	}
	for _, name := range f.Names() {
		if known[name] || internalFields[name] {
			continue
		}
		v, ok := f.Get(name)
		if !ok {
			continue
		}
		b.WriteString("  " + name + " = {" + v + "},\n")
	}
}

// Transform is one cleanup pass over formatted record text.
// Every transform is idempotent.
type Transform func(text string) string

// CleanupChain is the ordered list of transforms Cleanup applies.
var CleanupChain = []Transform{
	NormalizeSeparators,
	EscapeSpecial,
	StripBlankLines,
	CanonicalOrder,
	CollapseWhitespace,
}

// Cleanup runs the cleanup chain over formatted record text.
// Running it on its own output returns the output unchanged.
func Cleanup(text string) string {
	for _, t := range CleanupChain {
		text = t(text)
	}
	return text
}

// fieldLineRe matches a "name = value," line; the value keeps its braces.
var fieldLineRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_-]*)\s*=\s*(.*?)[\s,]*$`)

type fieldLine struct {
	name  string
	value string
}

func parseFieldLine(line string) (fieldLine, bool) {
	m := fieldLineRe.FindStringSubmatch(line)
	if m == nil {
		return fieldLine{}, false
	}
	return fieldLine{name: strings.ToLower(m[1]), value: m[2]}, true
}

func (l fieldLine) String() string {
	return "  " + l.name + " = " + l.value + ","
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func mapLines(text string, fn func(line string) string) string {
	if text == "" {
		return ""
	}
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = fn(line)
	}
	return joinLines(lines)
}

// NormalizeSeparators rewrites every field line as "  name = value," with
// a lowercase name. The trailing comma is kept on the last field too, which
// BibTeX accepts, so the result does not depend on field position.
func NormalizeSeparators(text string) string {
	return mapLines(text, func(line string) string {
		if fl, ok := parseFieldLine(line); ok {
			return fl.String()
		}
		return line
	})
}

// EscapeSpecial backslash-escapes &, %, # and $ in field values, except in
// url and doi. Braces without a partner are escaped as well, and a trailing
// lone backslash becomes \textbackslash{}, so a scraped value can never end
// its field early. Characters already preceded by a backslash are left
// alone.
func EscapeSpecial(text string) string {
	return mapLines(text, func(line string) string {
		fl, ok := parseFieldLine(line)
		if !ok || verbatimFields[fl.name] {
			return line
		}
		escaped := escapeValue(fl.value)
		if escaped == fl.value {
			return line
		}
		fl.value = escaped
		return fl.String()
	})
}

// escapeValue escapes the inside of a braced or quoted value. Bare values
// only get the special characters escaped.
func escapeValue(v string) string {
	n := len(v)
	if n >= 2 && (v[0] == '{' && v[n-1] == '}' || v[0] == '"' && v[n-1] == '"') {
		return v[:1] + escapeText(v[1:n-1]) + v[n-1:]
	}
	return escapeText(v)
}

func escapeText(s string) string {
	unmatched := make(map[int]bool)
	var opens []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			opens = append(opens, i)
		case '}':
			if len(opens) == 0 {
				unmatched[i] = true
			} else {
				opens = opens[:len(opens)-1]
			}
		}
	}
	for _, i := range opens {
		unmatched[i] = true
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i == len(s)-1:
			b.WriteString(`\textbackslash{}`)
			continue
		case c == '\\':
			b.WriteString(s[i : i+2])
			i++
			continue
		case unmatched[i], c == '&', c == '%', c == '#', c == '$':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// StripBlankLines removes whitespace-only lines and field lines with an
// empty value.
func StripBlankLines(text string) string {
	if text == "" {
		return ""
	}
	var out []string
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if fl, ok := parseFieldLine(line); ok {
			switch strings.TrimSpace(fl.value) {
			case "", "{}", `""`:
				continue
			}
		}
		out = append(out, line)
	}
	return joinLines(out)
}

// CanonicalOrder sorts the field lines of each entry into FieldOrder.
// Unknown fields follow the known ones in their original order. Lines that
// do not parse as fields stay attached to the field line above them.
func CanonicalOrder(text string) string {
	if text == "" {
		return ""
	}

	type group struct {
		rank  int
		lines []string
	}

	var out []string
	var groups []group
	inEntry := false

	flush := func() {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].rank < groups[j].rank
		})
		for _, g := range groups {
			out = append(out, g.lines...)
		}
		groups = nil
	}

	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "@"):
			flush()
			out = append(out, line)
			inEntry = true
		case inEntry && trimmed == "}":
			flush()
			out = append(out, line)
			inEntry = false
		case !inEntry:
			out = append(out, line)
		default:
			if fl, ok := parseFieldLine(line); ok {
				groups = append(groups, group{rank: fieldRank(fl.name), lines: []string{line}})
			} else if len(groups) == 0 {
				groups = append(groups, group{rank: -1, lines: []string{line}})
			} else {
				last := &groups[len(groups)-1]
				last.lines = append(last.lines, line)
			}
		}
	}
	flush()
	return joinLines(out)
}

func fieldRank(name string) int {
	for i, n := range FieldOrder {
		if n == name {
			return i
		}
	}
	return len(FieldOrder)
}

// CollapseWhitespace collapses runs of whitespace after the indentation of
// each line into single spaces and trims trailing whitespace.
func CollapseWhitespace(text string) string {
	return mapLines(text, func(line string) string {
		rest := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(rest)]
		rest = strings.Join(strings.Fields(rest), " ")
		if rest == "" {
			return ""
		}
		return indent + rest
	})
}
