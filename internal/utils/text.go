package utils

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// MaxLinkText is the longest link label shown before it is shortened.
const MaxLinkText = 40

var (
	// Paragraphs and bare URLs only: post text is not markdown.
	textParser = goldmark.New(
		goldmark.WithParser(parser.NewParser(
			parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
		)),
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	textPolicy = newTextPolicy()
)

func newTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	return p
}

// RenderText turns post or comment text into HTML: blank lines separate
// paragraphs, single newlines become <br> and URLs become links.
func RenderText(source string) template.HTML {
	var buf bytes.Buffer
	if err := textParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(source), "\n", "<br>"))
	}
	return decorateLinks(textPolicy.SanitizeBytes(buf.Bytes()))
}

// decorateLinks opens links in a new tab without a referrer and shortens
// long link labels.
func decorateLinks(fragment []byte) template.HTML {
	if len(fragment) == 0 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(fragment))
	if err != nil {
		return template.HTML(fragment)
	}

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("target", "_blank")
		s.SetAttr("rel", "nofollow noopener noreferrer")
		if label := s.Text(); len(label) > MaxLinkText {
			s.SetText(label[:MaxLinkText-3] + "...")
		}
	})

	// goquery wraps fragments in html/body
	out, _ := doc.Find("body").Html()
	return template.HTML(out)
}
