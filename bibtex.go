package webcite

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// Entry is a parsed BibTeX entry.
type Entry struct {
	Type   string
	Key    string
	Fields []EntryField
}

// EntryField is one "name = value" pair of an entry, in source order.
// Value has its outer braces or quotes removed.
type EntryField struct {
	Name  string
	Value string
}

// Get returns the value of the named field.
func (e *Entry) Get(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// ParseBibTeX parses the first entry in text.
func ParseBibTeX(text string) (*Entry, error) {
	p := &bibParser{s: text}
	return p.entry()
}

type bibParser struct {
	s   string
	pos int
}

func (p *bibParser) entry() (*Entry, error) {
	at := strings.IndexByte(p.s, '@')
	if at < 0 {
		return nil, Errorf(EINVALID, "no BibTeX entry found")
	}
	p.pos = at + 1

	typ := p.readWhile(func(r byte) bool { return isIdentByte(r) })
	if typ == "" {
		return nil, Errorf(EINVALID, "missing entry type")
	}
	p.skipSpace()
	open := p.next()
	if open != '{' && open != '(' {
		return nil, Errorf(EINVALID, "expected { after @%s", typ)
	}
	closing := byte('}')
	if open == '(' {
		closing = ')'
	}

	p.skipSpace()
	key := strings.TrimSpace(p.readWhile(func(r byte) bool { return r != ',' && r != closing }))
	e := &Entry{Type: strings.ToLower(typ), Key: key}

	for {
		p.skipSpace()
		c := p.peek()
		switch c {
		case 0:
			return nil, Errorf(EINVALID, "unterminated entry %q", key)
		case ',':
			p.pos++
			continue
		case closing:
			p.pos++
			return e, nil
		}

		name := p.readWhile(func(r byte) bool { return isIdentByte(r) })
		if name == "" {
			return nil, Errorf(EINVALID, "unexpected %q in entry %q", string(c), key)
		}
		p.skipSpace()
		if p.next() != '=' {
			return nil, Errorf(EINVALID, "expected = after field %q", name)
		}
		p.skipSpace()
		value, err := p.value(closing)
		if err != nil {
			return nil, err
		}
		e.Fields = append(e.Fields, EntryField{
			Name:  strings.ToLower(name),
			Value: collapseSpace(value),
		})
	}
}

// value reads a braced, quoted or bare value, including "#" concatenation.
func (p *bibParser) value(closing byte) (string, error) {
	var parts []string
	for {
		p.skipSpace()
		switch p.peek() {
		case '{':
			v, err := p.delimited('}')
			if err != nil {
				return "", err
			}
			parts = append(parts, v)
		case '"':
			v, err := p.delimited('"')
			if err != nil {
				return "", err
			}
			parts = append(parts, v)
		default:
			v := strings.TrimSpace(p.readWhile(func(r byte) bool {
				return r != ',' && r != closing && r != '#'
			}))
			parts = append(parts, v)
		}
		p.skipSpace()
		if p.peek() != '#' {
			return strings.Join(parts, ""), nil
		}
		p.pos++
	}
}

// delimited reads a value opened at the current position and ended by end,
// honoring nested braces, and returns it without the outer delimiters.
func (p *bibParser) delimited(end byte) (string, error) {
	start := p.pos
	p.pos++
	depth := 0
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '\\':
			p.pos++
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == end && depth == 0:
			p.pos++
			return p.s[start+1 : p.pos-1], nil
		}
		p.pos++
	}
	return "", Errorf(EINVALID, "unterminated value")
}

func (p *bibParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *bibParser) next() byte {
	c := p.peek()
	if c != 0 {
		p.pos++
	}
	return c
}

func (p *bibParser) skipSpace() {
	for p.pos < len(p.s) && unicode.IsSpace(rune(p.s[p.pos])) {
		p.pos++
	}
}

func (p *bibParser) readWhile(fn func(byte) bool) string {
	start := p.pos
	for p.pos < len(p.s) && fn(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' || c == ':' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var entryKeyRe = regexp.MustCompile(`^(\s*@[A-Za-z]+\s*[{(])\s*[^,\s]*\s*,`)

// ReplaceKey replaces the citation key of the first entry in text.
func ReplaceKey(text, key string) string {
	text = strings.TrimSpace(text)
	loc := entryKeyRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text + "\n"
	}
	return text[:loc[3]] + key + "," + text[loc[1]:] + "\n"
}

// CorpusLine is a field found while scanning a bibliography file.
type CorpusLine struct {
	Line  int
	Field string
	Value string
	Text  string
}

var (
	corpusHeaderRe   = regexp.MustCompile(`^\s*@([A-Za-z]+)\s*[{(]\s*([^,\s]+)\s*,`)
	corpusFieldRe    = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_-]*)\s*=\s*[{"]?(.*?)[}"]?[\s,]*$`)
	corpusPropertyRe = regexp.MustCompile(`^\s*:([A-Za-z][A-Za-z0-9_-]*):\s+(\S.*?)\s*$`)
)

// ScanCorpus reads a bibliography file line by line and calls fn for every
// citation key, BibTeX field and Org property it finds. Citation keys are
// reported with Field "key".
func ScanCorpus(r io.Reader, fn func(CorpusLine)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		text := scanner.Text()
		switch {
		case corpusHeaderRe.MatchString(text):
			m := corpusHeaderRe.FindStringSubmatch(text)
			fn(CorpusLine{Line: n, Field: FieldKey, Value: m[2], Text: text})
		case corpusPropertyRe.MatchString(text):
			m := corpusPropertyRe.FindStringSubmatch(text)
			fn(CorpusLine{Line: n, Field: strings.ToLower(m[1]), Value: m[2], Text: text})
		case corpusFieldRe.MatchString(text):
			m := corpusFieldRe.FindStringSubmatch(text)
			if v := strings.TrimSpace(m[2]); v != "" {
				fn(CorpusLine{Line: n, Field: strings.ToLower(m[1]), Value: v, Text: text})
			}
		}
	}
	return scanner.Err()
}
