package feed

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

const sampleCSV = `id,title,description,image_link,link,price,sale_price,brand,availability
A1,Robe longue fleurie,"<p>Robe <b>longue</b>, coupe empire</p>",https://cdn.example.com/a1.jpg,https://shop.example.com/a1,89.90 EUR,59.90 EUR,Maison Claire,in stock
A2,Bague dorée,,http://cdn.example.com/a2.jpg,https://shop.example.com/a2,30 EUR,"22,50 EUR",Atelier Or,out of stock
,Bottes en cuir,Cuir véritable,https://cdn.example.com/placeholder.png,https://shop.example.com/a3,150 EUR,120 EUR,,
`

func TestCSVParserParsesRows(t *testing.T) {
	result := NewCSVParser().Run(sampleCSV, Options{SourceName: "maison"})

	if len(result.Products) != 3 {
		t.Fatalf("Expected 3 products, got %d (diagnostics: %v)", len(result.Products), result.Diagnostics)
	}
	if result.Skipped != 0 {
		t.Errorf("Expected 0 skipped, got %d", result.Skipped)
	}

	robe := result.Products[0]
	if robe.ID != "A1" {
		t.Errorf("Expected ID 'A1', got %q", robe.ID)
	}
	if robe.Price != "59.90" {
		t.Errorf("Expected sale price '59.90', got %q", robe.Price)
	}
	if robe.Description != "Robe longue, coupe empire" {
		t.Errorf("Expected HTML stripped description, got %q", robe.Description)
	}
	if robe.ImageURL != "https://cdn.example.com/a1.jpg" {
		t.Errorf("Expected image URL kept, got %q", robe.ImageURL)
	}
	if robe.Category != CategoryClothing {
		t.Errorf("Expected Clothing, got %s", robe.Category)
	}

	bague := result.Products[1]
	if bague.Price != "22.50" {
		t.Errorf("Expected sale price '22.50', got %q", bague.Price)
	}
	if bague.ImageURL != "" {
		t.Errorf("Expected non-https image dropped, got %q", bague.ImageURL)
	}
	if bague.Description != "Discover this Atelier Or product" {
		t.Errorf("Expected default description, got %q", bague.Description)
	}
	if bague.Availability != OutOfStock {
		t.Errorf("Expected out of stock, got %q", bague.Availability)
	}
	if bague.Category != CategoryJewelry {
		t.Errorf("Expected Jewelry, got %s", bague.Category)
	}

	bottes := result.Products[2]
	if bottes.ID != "maison_3" {
		t.Errorf("Expected synthesized ID 'maison_3', got %q", bottes.ID)
	}
	if bottes.Price != "120" {
		t.Errorf("Expected sale price '120', got %q", bottes.Price)
	}
	if bottes.Brand != "maison" {
		t.Errorf("Expected brand fallback to source name, got %q", bottes.Brand)
	}
	if bottes.ImageURL != "" {
		t.Errorf("Expected placeholder image dropped, got %q", bottes.ImageURL)
	}
	if bottes.Availability != InStock {
		t.Errorf("Expected empty availability to mean in stock, got %q", bottes.Availability)
	}
	if bottes.Category != CategoryShoes {
		t.Errorf("Expected Shoes, got %s", bottes.Category)
	}
}

func TestCSVParserSkipsUnparseablePrice(t *testing.T) {
	var b strings.Builder
	b.WriteString("title,price\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "Product %d,%d.00 EUR\n", i, i*10)
	}
	b.WriteString("Broken,N/A\n")

	result := NewCSVParser().Run(b.String(), Options{SourceName: "shop"})

	if len(result.Products) != 10 {
		t.Fatalf("Expected 10 products, got %d", len(result.Products))
	}
	if result.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", result.Skipped)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(result.Diagnostics))
	}
	d := result.Diagnostics[0]
	if d.Kind != DiagnosticInvalidPrice || d.Index != 11 {
		t.Errorf("Expected invalid_price at row 11, got %s at %d", d.Kind, d.Index)
	}
}

func TestCSVParserProductsAlwaysValid(t *testing.T) {
	text := "title,price\n" +
		"Good,10\n" +
		",20\n" +
		"No price,\n" +
		"Bad price,abc\n" +
		"Also good,\"1.299,00 €\"\n"

	result := NewCSVParser().Run(text, Options{SourceName: "shop"})

	if len(result.Products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(result.Products))
	}
	if result.Skipped != 3 {
		t.Errorf("Expected 3 skipped, got %d", result.Skipped)
	}
	for _, p := range result.Products {
		if p.Name == "" {
			t.Errorf("Expected non-empty name, got %+v", p)
		}
		if v, err := strconv.ParseFloat(p.Price, 64); err != nil || v < 0 {
			t.Errorf("Expected non-negative numeric price, got %q", p.Price)
		}
	}
	if result.Diagnostics[0].Kind != DiagnosticRowError {
		t.Errorf("Expected empty title to be a row_parse_error, got %s", result.Diagnostics[0].Kind)
	}
}

func TestCSVParserMissingRequiredColumns(t *testing.T) {
	result := NewCSVParser().Run("brand,description\nAcme,Thing\n", Options{SourceName: "shop"})

	if len(result.Products) != 0 {
		t.Errorf("Expected no products, got %d", len(result.Products))
	}
	if result.Products == nil {
		t.Error("Expected empty, non-nil product slice")
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Kind != DiagnosticMissingColumns {
		t.Errorf("Expected a single missing_required_columns diagnostic, got %v", result.Diagnostics)
	}
}

func TestCSVParserFrenchHeaders(t *testing.T) {
	text := "Nom du Produit;Prix;Marque\nCardigan en laine;45,00 EUR;Atelier\n"

	result := NewCSVParser().Run(text, Options{SourceName: "fr"})

	if len(result.Products) != 1 {
		t.Fatalf("Expected 1 product, got %d (diagnostics: %v)", len(result.Products), result.Diagnostics)
	}
	p := result.Products[0]
	if p.Name != "Cardigan en laine" || p.Price != "45.00" || p.Brand != "Atelier" {
		t.Errorf("Unexpected product: %+v", p)
	}
}

func TestCSVParserPadsShortRows(t *testing.T) {
	text := "title,price,brand,description,link\n" +
		"Robe,10\n"

	result := NewCSVParser().Run(text, Options{SourceName: "shop"})

	if len(result.Products) != 1 {
		t.Fatalf("Expected padded row to parse, got %d products (diagnostics: %v)", len(result.Products), result.Diagnostics)
	}
	if result.Products[0].Brand != "shop" {
		t.Errorf("Expected brand fallback on padded row, got %q", result.Products[0].Brand)
	}
}

func TestCSVParserSkipsVeryShortRows(t *testing.T) {
	text := "title,a,b,c,d,e,price\n" +
		"Robe\n" +
		"Jupe,,,,,,15\n"

	result := NewCSVParser().Run(text, Options{SourceName: "shop"})

	if len(result.Products) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(result.Products))
	}
	if result.Skipped != 1 || result.Diagnostics[0].Kind != DiagnosticShortRow {
		t.Errorf("Expected one short_row diagnostic, got %v", result.Diagnostics)
	}
}

func TestCSVParserConfiguredDelimiterAndBOM(t *testing.T) {
	text := "\ufefftitle\tprice\r\nRobe\t12\r\n"

	result := NewCSVParser().Run(text, Options{SourceName: "shop", Delimiter: '\t'})

	if len(result.Products) != 1 {
		t.Fatalf("Expected 1 product, got %d (diagnostics: %v)", len(result.Products), result.Diagnostics)
	}
	if result.Products[0].Price != "12" {
		t.Errorf("Expected price '12', got %q", result.Products[0].Price)
	}
}

func TestCSVParserImageDenylist(t *testing.T) {
	text := "title,price,image_link\nRobe,10,https://cdn.example.com/missing/robe.jpg\n"

	result := NewCSVParser().Run(text, Options{SourceName: "shop", ImageDenylist: []string{"/missing/"}})

	if len(result.Products) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(result.Products))
	}
	if result.Products[0].ImageURL != "" {
		t.Errorf("Expected denylisted image dropped, got %q", result.Products[0].ImageURL)
	}
}

func TestCSVParserEmptyInput(t *testing.T) {
	result := NewCSVParser().Run("", Options{SourceName: "shop"})
	if len(result.Products) != 0 || result.Skipped != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestCSVParserStockColumns(t *testing.T) {
	text := "title,price,stock\n" +
		"Robe,10,12\n" +
		"Jupe,10,yes\n" +
		"Veste,10,0\n" +
		"Pull,10,no\n"

	result := NewCSVParser().Run(text, Options{SourceName: "shop"})

	if len(result.Products) != 4 {
		t.Fatalf("Expected 4 products, got %d", len(result.Products))
	}
	expected := []Availability{InStock, InStock, OutOfStock, OutOfStock}
	for i, want := range expected {
		if got := result.Products[i].Availability; got != want {
			t.Errorf("%s: expected %q, got %q", result.Products[i].Name, want, got)
		}
	}
}
