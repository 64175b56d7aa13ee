package feed

import "fmt"

type Format string

const (
	FormatCSV Format = "csv"
	FormatXML Format = "xml"
)

type Category string

const (
	CategoryJewelry     Category = "Jewelry"
	CategoryShoes       Category = "Shoes"
	CategoryClothing    Category = "Clothing"
	CategoryAccessories Category = "Accessories"
)

type Availability string

const (
	InStock    Availability = "in stock"
	OutOfStock Availability = "out of stock"
)

// Product is the normalized record every parser converges on.
// Name is never empty and Price always parses as a non-negative number.
type Product struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Brand         string       `json:"brand"`
	Price         string       `json:"price"`
	Description   string       `json:"description"`
	ImageURL      string       `json:"imageUrl"`
	AffiliateLink string       `json:"affiliateLink"`
	Category      Category     `json:"category"`
	Availability  Availability `json:"availability"`
}

type DiagnosticKind string

const (
	DiagnosticMissingColumns DiagnosticKind = "missing_required_columns"
	DiagnosticRowError       DiagnosticKind = "row_parse_error"
	DiagnosticItemError      DiagnosticKind = "item_parse_error"
	DiagnosticInvalidPrice   DiagnosticKind = "invalid_price"
	DiagnosticShortRow       DiagnosticKind = "short_row"
)

// Diagnostic records a row or item that did not make it into the result.
// Index is the data row number for CSV (header excluded, 1-based) and the
// item number for XML (1-based); it is 0 for feed-level diagnostics.
type Diagnostic struct {
	Index   int            `json:"index"`
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

// RowError is returned by per-row and per-item extraction and converted into
// a Diagnostic by the parser loop.
type RowError struct {
	Index int
	Kind  DiagnosticKind
	Msg   string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s at %d: %s", e.Kind, e.Index, e.Msg)
}

func (e *RowError) diagnostic() Diagnostic {
	return Diagnostic{Index: e.Index, Kind: e.Kind, Message: e.Msg}
}

type ParseResult struct {
	Products    []Product
	Skipped     int
	Diagnostics []Diagnostic
}

func (r *ParseResult) reject(err *RowError) {
	r.Skipped++
	r.Diagnostics = append(r.Diagnostics, err.diagnostic())
}

// Options carries the per-source knobs the parsers need.
type Options struct {
	SourceName    string
	Delimiter     rune
	ImageDenylist []string
}
