package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
	readability "github.com/go-shiori/go-readability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Article is the readable content extracted from a post page.
type Article struct {
	Title       string
	Byline      string
	Content     string // cleaned HTML
	TextContent string
	SiteName    string
	URL         string
}

// Link is a hyperlink found while rendering an article.
type Link struct {
	Index int
	Text  string
	URL   string
}

// ReaderPage is an article rendered for the terminal.
type ReaderPage struct {
	Title   string
	URL     string
	Content string
	Links   []Link
}

// Extract pulls the readable article out of a fetched page. Non-HTML bodies
// are shown preformatted.
func Extract(result *FetchResult) (*Article, error) {
	if !IsHTML(result.ContentType) {
		return &Article{
			Title:       result.FinalURL,
			Content:     "<pre>" + string(result.Body) + "</pre>",
			TextContent: string(result.Body),
			URL:         result.FinalURL,
		}, nil
	}

	parsedURL, err := url.Parse(result.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(result.Body), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extracting article: %w", err)
	}

	return &Article{
		Title:       article.Title,
		Byline:      article.Byline,
		Content:     article.Content,
		TextContent: article.TextContent,
		SiteName:    article.SiteName,
		URL:         result.FinalURL,
	}, nil
}

// Reader opens post links as rendered articles, caching the results.
type Reader struct {
	fetcher *Fetcher
	cache   *lru.Cache[string, *ReaderPage]
}

// NewReader creates a Reader that keeps up to cacheSize rendered pages.
func NewReader(fetcher *Fetcher, cacheSize int) *Reader {
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	if cacheSize <= 0 {
		cacheSize = 20
	}
	cache, _ := lru.New[string, *ReaderPage](cacheSize)
	return &Reader{fetcher: fetcher, cache: cache}
}

// Open fetches, extracts and renders rawURL at the given width.
func (r *Reader) Open(ctx context.Context, rawURL string, width int) (*ReaderPage, error) {
	cacheKey := fmt.Sprintf("%d|%s", width, rawURL)
	if page, ok := r.cache.Get(cacheKey); ok {
		return page, nil
	}

	result, err := r.fetcher.FetchWithContext(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	article, err := Extract(result)
	if err != nil {
		return nil, err
	}

	page := Render(article, width)
	r.cache.Add(cacheKey, page)
	return page, nil
}

// Purge drops every cached page, e.g. after the markdown style changed.
func (r *Reader) Purge() {
	r.cache.Purge()
}

var (
	cachedRenderer      *glamour.TermRenderer
	cachedRendererWidth int
	cachedRendererStyle string
	markdownStyle       string
	rendererMu          sync.Mutex
)

// SetMarkdownStyle selects the glamour standard style ("dark", "light")
// used by RenderMarkdown. An empty name detects the terminal background.
func SetMarkdownStyle(style string) {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	markdownStyle = style
}

// RenderMarkdown renders markdown with a glamour renderer cached per width
// and style.
func RenderMarkdown(markdown string, width int) (string, error) {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	if cachedRenderer == nil || cachedRendererWidth != width || cachedRendererStyle != markdownStyle {
		style := glamour.WithAutoStyle()
		if markdownStyle != "" {
			style = glamour.WithStandardStyle(markdownStyle)
		}
		renderer, err := glamour.NewTermRenderer(
			style,
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		cachedRenderer = renderer
		cachedRendererWidth = width
		cachedRendererStyle = markdownStyle
	}

	return cachedRenderer.Render(markdown)
}

// Render converts an article into styled terminal text.
func Render(article *Article, width int) *ReaderPage {
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4
	if contentWidth > 100 {
		contentWidth = 100
	}

	page := &ReaderPage{Title: article.Title, URL: article.URL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		page.Content = article.TextContent
		return page
	}

	var md strings.Builder
	if article.Title != "" {
		md.WriteString("# " + article.Title + "\n\n")
	}
	if article.Byline != "" {
		md.WriteString("*" + article.Byline + "*\n\n")
	}
	md.WriteString("---\n\n")

	conv := &mdConverter{}
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		md.WriteString(conv.block(s))
	})
	page.Links = conv.links

	rendered, err := RenderMarkdown(md.String(), contentWidth)
	if err != nil {
		rendered = md.String()
	}
	page.Content = rendered
	return page
}

// mdConverter turns the readability HTML into markdown, numbering links.
type mdConverter struct {
	links []Link
}

func (c *mdConverter) block(s *goquery.Selection) string {
	switch tag := goquery.NodeName(s); tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return ""
		}
		return strings.Repeat("#", int(tag[1]-'0')) + " " + text + "\n\n"
	case "p":
		text := strings.TrimSpace(c.inline(s))
		if text == "" {
			return ""
		}
		return text + "\n\n"
	case "ul", "ol":
		var sb strings.Builder
		s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
			prefix := "- "
			if tag == "ol" {
				prefix = fmt.Sprintf("%d. ", i+1)
			}
			sb.WriteString(prefix + strings.TrimSpace(c.inline(li)) + "\n")
		})
		return sb.String() + "\n"
	case "blockquote":
		var sb strings.Builder
		for _, line := range strings.Split(strings.TrimSpace(c.inline(s)), "\n") {
			sb.WriteString("> " + line + "\n")
		}
		return sb.String() + "\n"
	case "pre":
		return "```\n" + s.Text() + "\n```\n\n"
	case "img":
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		if src == "" {
			return ""
		}
		return fmt.Sprintf("![%s](%s)\n\n", alt, src)
	case "hr":
		return "---\n\n"
	case "div", "article", "section", "main", "header", "footer", "figure":
		var sb strings.Builder
		s.Children().Each(func(_ int, child *goquery.Selection) {
			sb.WriteString(c.block(child))
		})
		return sb.String()
	default:
		text := strings.TrimSpace(c.inline(s))
		if text == "" {
			return ""
		}
		return text + "\n\n"
	}
}

func (c *mdConverter) inline(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "#text":
			sb.WriteString(child.Text())
		case "a":
			sb.WriteString(c.link(child))
		case "strong", "b":
			sb.WriteString("**" + c.inline(child) + "**")
		case "em", "i":
			sb.WriteString("*" + c.inline(child) + "*")
		case "code":
			sb.WriteString("`" + child.Text() + "`")
		case "br":
			sb.WriteString("  \n")
		case "ul", "ol":
			// nested lists are flattened into their parent item
			sb.WriteString(" " + strings.TrimSpace(child.Text()))
		default:
			sb.WriteString(c.inline(child))
		}
	})
	return sb.String()
}

func (c *mdConverter) link(s *goquery.Selection) string {
	href, ok := s.Attr("href")
	text := strings.TrimSpace(s.Text())
	if text == "" {
		text = href
	}
	if !ok || href == "" {
		return text
	}

	idx := len(c.links) + 1
	c.links = append(c.links, Link{Index: idx, Text: text, URL: href})
	return fmt.Sprintf("[%s](%s) **[%d]**", text, href, idx)
}
