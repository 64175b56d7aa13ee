package feed

import (
	"fmt"
	"log/slog"
	"strings"
)

// maxPadding is the largest column shortfall a row may have and still be
// padded with empty cells instead of being skipped.
const maxPadding = 5

type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Run(text string, opts Options) *ParseResult {
	result := &ParseResult{Products: []Product{}}

	text = normalizeLineEndings(strings.TrimPrefix(text, "\ufeff"))
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = SniffDelimiter(text)
	}

	rows := Tokenize(text, delimiter)
	if len(rows) == 0 {
		slog.Warn("CSV feed is empty", "source", opts.SourceName)
		return result
	}

	columns := ResolveColumns(rows[0])
	if missing := columns.Missing(); len(missing) > 0 {
		slog.Error("CSV feed lacks required columns",
			"source", opts.SourceName,
			"missing", missing,
			"header", rows[0])
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Kind:    DiagnosticMissingColumns,
			Message: fmt.Sprintf("no column found for %v", missing),
		})
		return result
	}

	needed := columns.MaxIndex() + 1
	for i, row := range rows[1:] {
		index := i + 1

		if shortfall := needed - len(row); shortfall > 0 {
			if shortfall > maxPadding {
				result.reject(&RowError{
					Index: index,
					Kind:  DiagnosticShortRow,
					Msg:   fmt.Sprintf("row has %d fields, %d needed", len(row), needed),
				})
				continue
			}
			row = append(row, make([]string, shortfall)...)
		}

		product, err := p.parseRow(row, index, columns, opts)
		if err != nil {
			result.reject(err)
			continue
		}
		result.Products = append(result.Products, product)
	}

	slog.Debug("Parsed CSV feed",
		"source", opts.SourceName,
		"rows", len(rows)-1,
		"products", len(result.Products),
		"skipped", result.Skipped)

	return result
}

func (p *CSVParser) parseRow(row []string, index int, columns ColumnMapping, opts Options) (Product, *RowError) {
	title := columns.Value(row, FieldTitle)
	if title == "" {
		return Product{}, &RowError{Index: index, Kind: DiagnosticRowError, Msg: "empty title"}
	}

	rawPrice := cell(row, columns.Price())
	price, ok := CleanPrice(rawPrice)
	if !ok {
		return Product{}, &RowError{Index: index, Kind: DiagnosticInvalidPrice, Msg: fmt.Sprintf("unparseable price %q", rawPrice)}
	}

	brand := columns.Value(row, FieldBrand)
	if brand == "" {
		brand = opts.SourceName
	}

	description := plainText(columns.Value(row, FieldDescription))
	if description == "" {
		description = defaultDescription(brand)
	}

	image := columns.Value(row, FieldImage)
	if !IsValidImage(image, opts.ImageDenylist...) {
		image = ""
	}

	id := columns.Value(row, FieldID)
	if id == "" {
		id = fmt.Sprintf("%s_%d", opts.SourceName, index)
	}

	return Product{
		ID:            id,
		Name:          title,
		Brand:         brand,
		Price:         price,
		Description:   description,
		ImageURL:      image,
		AffiliateLink: columns.Value(row, FieldLink),
		Category:      CategoryOf(title),
		Availability:  NormalizeAvailability(columns.Value(row, FieldAvailability)),
	}, nil
}
