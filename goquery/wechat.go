package goquery

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/webcite"
)

// Ensure WeChatStep implements webcite.Step at compile time.
var _ webcite.Step = (*WeChatStep)(nil)

// wechatParams are the query parameters that identify an article.
var wechatParams = []string{"__biz", "mid", "idx", "sn"}

// WeChatStep extracts metadata from WeChat official account articles.
// Article pages carry their metadata in inline script variables, which
// are used when the meta tags are missing.
type WeChatStep struct{}

func (*WeChatStep) Name() string { return "wechat" }

func (*WeChatStep) Run(ctx context.Context, s *webcite.Session) (webcite.Outcome, error) {
	u, ok := sessionURL(s)
	if !ok || !webcite.HostMatches(u.Hostname(), "mp.weixin.qq.com") {
		return webcite.Continue, nil
	}
	s.Fields.Set(webcite.FieldURL, WeChatURL(u))
	s.Fields.Set(webcite.FieldHowPublished, "WeChat")

	doc, err := document(ctx, s)
	if err != nil {
		return webcite.Continue, err
	}
	s.Fields.SetIfUnset(webcite.FieldTitle, firstNonEmpty(
		meta(doc, "og:title", "twitter:title"),
		scriptVar(doc, "msg_title"),
		text(doc, "#activity-name"),
	))
	s.Fields.SetIfUnset(webcite.FieldAuthor, firstNonEmpty(
		text(doc, "#js_name"),
		scriptVar(doc, "nickname"),
		meta(doc, "author"),
	))
	if ct := scriptVar(doc, "ct"); ct != "" {
		if sec, err := strconv.ParseInt(ct, 10, 64); err == nil {
			s.Fields.SetIfUnset(webcite.FieldYear, strconv.Itoa(time.Unix(sec, 0).UTC().Year()))
		}
	}

	placeholder(s, webcite.FieldDOI)
	return webcite.Continue, nil
}

// WeChatURL returns the canonical article URL: only the parameters that
// identify the article are kept.
func WeChatURL(u *url.URL) string {
	q := u.Query()
	kept := url.Values{}
	for _, p := range wechatParams {
		if v := q.Get(p); v != "" {
			kept.Set(p, v)
		}
	}
	c := url.URL{Scheme: "https", Host: u.Host, Path: u.Path}
	if len(kept) > 0 {
		c.RawQuery = kept.Encode()
	}
	return c.String()
}
