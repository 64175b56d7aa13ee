package feed

import "strings"

// Tokenize splits CSV text into rows of fields.
//
// Quoted fields may contain the delimiter, line breaks and doubled quotes.
// "\n", "\r\n" and "\r" all end a row outside quotes. Rows made only of
// blank fields are dropped. An unterminated quote runs to the end of input.
func Tokenize(text string, delimiter rune) [][]string {
	if delimiter == 0 {
		delimiter = ','
	}

	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		if !isBlankRow(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == delimiter && !inQuotes:
			endField()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			if ch == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteRune(ch)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}

// SniffDelimiter guesses the field separator from the header line: a
// semicolon or tab wins over the comma only when it occurs more often
// outside quotes.
func SniffDelimiter(text string) rune {
	counts := map[rune]int{}
	inQuotes := false
	for _, ch := range text {
		if ch == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if ch == '\n' || ch == '\r' {
			break
		}
		switch ch {
		case ',', ';', '\t':
			counts[ch]++
		}
	}

	best := ','
	for _, candidate := range []rune{';', '\t'} {
		if counts[candidate] > counts[best] {
			best = candidate
		}
	}
	return best
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// normalizeLineEndings converts "\r\n" and lone "\r" to "\n".
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
