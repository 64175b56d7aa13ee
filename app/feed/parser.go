package feed

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser dispatches raw feed text to the CSV or XML parser.
type Parser struct {
	csv *CSVParser
	xml *XMLParser
}

func NewParser() *Parser {
	return &Parser{
		csv: NewCSVParser(),
		xml: NewXMLParser(),
	}
}

// Run parses text in the given format; an empty format is inferred from the
// body.
func (p *Parser) Run(text string, format Format, opts Options) (*ParseResult, error) {
	if format == "" {
		format = DetectFormat(text)
	}

	switch format {
	case FormatCSV:
		return p.csv.Run(text, opts), nil
	case FormatXML:
		return p.xml.Run(text, opts), nil
	default:
		return nil, fmt.Errorf("unsupported feed format: %q", format)
	}
}

// DetectFormat treats bodies starting with "<?xml" or "<rss", or that gofeed
// recognizes as RSS or Atom, as XML and everything else as CSV.
func DetectFormat(text string) Format {
	head := strings.TrimLeft(strings.TrimPrefix(text, "\ufeff"), " \t\r\n")
	lower := strings.ToLower(head[:min(len(head), 16)])
	if strings.HasPrefix(lower, "<?xml") || strings.HasPrefix(lower, "<rss") {
		return FormatXML
	}

	if strings.HasPrefix(head, "<") {
		switch gofeed.DetectFeedType(strings.NewReader(head)) {
		case gofeed.FeedTypeRSS, gofeed.FeedTypeAtom:
			return FormatXML
		}
	}

	return FormatCSV
}

// ParseFormat validates a configured format name; "" means infer.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXML, "rss":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown feed format %q (expected csv or xml)", s)
	}
}
