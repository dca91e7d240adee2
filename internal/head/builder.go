// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to a single request.  Handlers push tags
// into the builder, then the layout decides where to emit each slice.
//
// Features
// --------
//   - SetTitle           – single <title> tag (last call wins).
//   - Meta, Link, Script – arbitrary tags with deduplication.
//   - JSONLD             – raw JSON-LD strings wrapped in
//     <script type="application/ld+json">…</script>.
//   - SEO                – description, keywords, robots, canonical, Open
//     Graph, and Twitter card tags from one struct.
//   - Render helpers     – concat methods that return template.HTML.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use, though typical use is one goroutine
// per request.
type Builder struct {
	mu sync.Mutex

	title string

	metas   []string
	links   []string
	scripts []string
	jsonLD  []string

	seen map[string]struct{}
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helper
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// TitleText returns the raw title.
func (b *Builder) TitleText() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

// ------------------------------------------------------------------
// Slice helpers with deduplication
// ------------------------------------------------------------------

func (b *Builder) Meta(tag string)   { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)   { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) Script(tag string) { b.add("script:"+tag, &b.scripts, tag) }
func (b *Builder) JSONLD(js string)  { b.add("jsonld:"+hash(js), &b.jsonLD, js) }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// hash creates a short, stable key for JSON-LD strings.
func hash(s string) string {
	if len(s) > 32 {
		return s[:32]
	}
	return s
}

// ------------------------------------------------------------------
// SEO
// ------------------------------------------------------------------

// SEO describes the search and social metadata of one page.  Empty fields
// emit nothing.
type SEO struct {
	SiteName    string
	Title       string
	Description string
	Keywords    string
	Robots      string // "index, follow" when empty
	Canonical   string // absolute URL
	Image       string // absolute URL for og:image / twitter:image
	Locale      string // "en_US"
	Type        string // og:type, "website" when empty
}

// SEO sets the title and pushes meta tags for s.  Values are escaped.
func (b *Builder) SEO(s SEO) {
	if s.Title != "" {
		b.SetTitle(s.Title)
	}
	if s.Robots == "" {
		s.Robots = "index, follow"
	}
	if s.Type == "" {
		s.Type = "website"
	}

	b.metaName("description", s.Description)
	b.metaName("keywords", s.Keywords)
	b.metaName("robots", s.Robots)
	if s.Canonical != "" {
		b.Link(`<link rel="canonical" href="` + template.HTMLEscapeString(s.Canonical) + `">`)
	}

	b.metaProperty("og:site_name", s.SiteName)
	b.metaProperty("og:title", s.Title)
	b.metaProperty("og:description", s.Description)
	b.metaProperty("og:type", s.Type)
	b.metaProperty("og:url", s.Canonical)
	b.metaProperty("og:image", s.Image)
	b.metaProperty("og:locale", s.Locale)

	card := "summary"
	if s.Image != "" {
		card = "summary_large_image"
	}
	b.metaName("twitter:card", card)
	b.metaName("twitter:title", s.Title)
	b.metaName("twitter:description", s.Description)
	b.metaName("twitter:image", s.Image)
}

func (b *Builder) metaName(name, content string) {
	if content == "" {
		return
	}
	b.Meta(`<meta name="` + name + `" content="` + template.HTMLEscapeString(content) + `">`)
}

func (b *Builder) metaProperty(prop, content string) {
	if content == "" {
		return
	}
	b.Meta(`<meta property="` + prop + `" content="` + template.HTMLEscapeString(content) + `">`)
}

// ------------------------------------------------------------------
// Rendering helpers called from templates
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML   { return b.concat(&b.metas) }
func (b *Builder) Links() template.HTML   { return b.concat(&b.links) }
func (b *Builder) Scripts() template.HTML { return b.concat(&b.scripts) }

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.jsonLD) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

// concat joins pre-escaped tags without a separator.
func (b *Builder) concat(sl *[]string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(*sl, ""))
}
