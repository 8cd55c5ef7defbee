package pipeline

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/fwojciec/webcite"
)

// Ensure RegexExtractor implements webcite.Step at compile time.
var _ webcite.Step = (*RegexExtractor)(nil)

type compiledRule struct {
	field    string
	patterns []*regexp.Regexp
}

// RegexExtractor is the catch-all step. For every configured field that is
// still undefined it tries the field's patterns in order against the page
// content and keeps the first capture group that matches. It never touches
// a field that is already defined.
type RegexExtractor struct {
	rules  []compiledRule
	logger *slog.Logger
}

// NewRegexExtractor compiles rules into an extractor.
func NewRegexExtractor(rules *webcite.Rules, logger *slog.Logger) (*RegexExtractor, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	x := &RegexExtractor{logger: loggerOrDiscard(logger)}
	for _, r := range rules.Fields {
		c := compiledRule{field: r.Field}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", r.Field, err)
			}
			c.patterns = append(c.patterns, re)
		}
		x.rules = append(x.rules, c)
	}
	return x, nil
}

func (*RegexExtractor) Name() string { return "generic" }

// Run fills undefined fields from the page content. Content is only
// retrieved when at least one configured field is undefined. A field no
// pattern matches stays unset and a parse miss is logged.
func (x *RegexExtractor) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	var pending []compiledRule
	for _, r := range x.rules {
		if !s.Fields.Defined(r.field) {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return webcite.Continue, nil
	}

	buf, err := s.Buffer(ctx)
	if err != nil {
		return webcite.Continue, err
	}

	for _, r := range pending {
		if v, ok := r.match(buf.Content); ok {
			s.Fields.SetIfUnset(r.field, v)
			continue
		}
		x.logger.Warn("parse miss",
			"code", webcite.EPARSEMISS,
			"field", r.field,
			"url", s.URL(),
			"source", buf.Source,
		)
	}
	return webcite.Continue, nil
}

func (r compiledRule) match(content string) (string, bool) {
	for _, re := range r.patterns {
		m := re.FindStringSubmatch(content)
		if len(m) < 2 {
			continue
		}
		if v := cleanMatch(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}

// cleanMatch unescapes HTML entities and collapses whitespace.
func cleanMatch(s string) string {
	s = strings.ToValidUTF8(html.UnescapeString(s), "")
	return collapseSpace(s)
}
