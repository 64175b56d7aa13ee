package feed

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

var (
	itemBoundary = regexp.MustCompile(`(?i)<(?:item|entry)(?:\s[^>]*)?>`)
	itemEnd      = regexp.MustCompile(`(?i)</(?:item|entry)\s*>`)
	linkHref     = regexp.MustCompile(`(?is)<link\s[^>]*href\s*=\s*["']([^"']+)["']`)
	nestedURL    = regexp.MustCompile(`(?is)<url(?:\s[^>]*)?>(.*?)</url\s*>`)
)

// Tag candidates per field; the Google Shopping namespaced variant wins.
var xmlTags = map[Field][]string{
	FieldID:           {"g:id", "id", "guid"},
	FieldTitle:        {"g:title", "title"},
	FieldDescription:  {"g:description", "description"},
	FieldLink:         {"g:link", "link"},
	FieldImage:        {"g:image_link", "image_link", "g:image", "image"},
	FieldRegularPrice: {"g:price", "price"},
	FieldBrand:        {"g:brand", "brand"},
}

var tagPatterns = compileTagPatterns()

func compileTagPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, tags := range xmlTags {
		for _, tag := range tags {
			quoted := regexp.QuoteMeta(tag)
			patterns[tag] = regexp.MustCompile(`(?is)<` + quoted + `(?:\s[^>]*)?>(.*?)</` + quoted + `\s*>`)
		}
	}
	return patterns
}

type XMLParser struct {
	now func() time.Time
}

func NewXMLParser() *XMLParser {
	return &XMLParser{now: time.Now}
}

func (p *XMLParser) Run(text string, opts Options) *ParseResult {
	result := &ParseResult{Products: []Product{}}

	segments := itemBoundary.Split(text, -1)
	if len(segments) < 2 {
		slog.Warn("XML feed has no items", "source", opts.SourceName)
		return result
	}

	stamp := p.now().UnixMilli()
	for i, segment := range segments[1:] {
		index := i + 1
		if loc := itemEnd.FindStringIndex(segment); loc != nil {
			segment = segment[:loc[0]]
		}

		product, err := p.parseItem(segment, index, stamp, opts)
		if err != nil {
			slog.Warn("Skipping feed item", "source", opts.SourceName, "item", index, "reason", err.Msg)
			result.reject(err)
			continue
		}
		result.Products = append(result.Products, product)
	}

	slog.Debug("Parsed XML feed",
		"source", opts.SourceName,
		"items", len(segments)-1,
		"products", len(result.Products),
		"skipped", result.Skipped)

	return result
}

func (p *XMLParser) parseItem(segment string, index int, stamp int64, opts Options) (Product, *RowError) {
	title := extractTag(segment, FieldTitle)
	rawPrice := extractTag(segment, FieldRegularPrice)
	if title == "" || rawPrice == "" {
		return Product{}, &RowError{Index: index, Kind: DiagnosticItemError, Msg: "missing title or price"}
	}

	price, ok := CleanPrice(rawPrice)
	if !ok {
		return Product{}, &RowError{Index: index, Kind: DiagnosticInvalidPrice, Msg: fmt.Sprintf("unparseable price %q", rawPrice)}
	}

	brand := extractTag(segment, FieldBrand)
	if brand == "" {
		brand = opts.SourceName
	}

	description := plainText(extractTag(segment, FieldDescription))
	if description == "" {
		description = defaultDescription(brand)
	}

	image := imageURL(extractTag(segment, FieldImage))
	if !IsValidImage(image, opts.ImageDenylist...) {
		image = ""
	}

	link := extractTag(segment, FieldLink)
	if link == "" {
		if m := linkHref.FindStringSubmatch(segment); m != nil {
			link = html.UnescapeString(m[1])
		}
	}

	id := extractTag(segment, FieldID)
	if id == "" {
		id = fmt.Sprintf("%s_%d_%d", opts.SourceName, stamp, index)
	}

	return Product{
		ID:            id,
		Name:          title,
		Brand:         brand,
		Price:         price,
		Description:   description,
		ImageURL:      image,
		AffiliateLink: link,
		Category:      CategoryOf(title),
		Availability:  InStock,
	}, nil
}

// imageURL unwraps an RSS-style <image><url>...</url></image> block.
func imageURL(value string) string {
	if !strings.Contains(value, "<") {
		return value
	}
	m := nestedURL.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	inner, isCDATA := unwrapCDATA(m[1])
	if !isCDATA {
		inner = html.UnescapeString(inner)
	}
	return strings.TrimSpace(inner)
}

// extractTag returns the text of the first candidate tag for field that has
// a non-empty value, with CDATA unwrapped and entities decoded.
func extractTag(segment string, field Field) string {
	for _, tag := range xmlTags[field] {
		m := tagPatterns[tag].FindStringSubmatch(segment)
		if m == nil {
			continue
		}
		value, isCDATA := unwrapCDATA(m[1])
		if !isCDATA {
			value = html.UnescapeString(value)
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
