package feed

import "strings"

type Field string

const (
	FieldTitle        Field = "title"
	FieldDescription  Field = "description"
	FieldImage        Field = "image"
	FieldLink         Field = "link"
	FieldSalePrice    Field = "salePrice"
	FieldRegularPrice Field = "regularPrice"
	FieldBrand        Field = "brand"
	FieldID           Field = "id"
	FieldAvailability Field = "availability"
)

// NotFound is the index reported for a field with no matching header.
const NotFound = -1

// Header aliases per canonical field, in priority order.
var columnAliases = map[Field][]string{
	FieldTitle: {
		"title", "name", "product_name", "product name", "product_title", "product title",
		"nom du produit", "nom produit", "nom_produit", "titre", "nom", "libellé", "libelle",
	},
	FieldDescription: {
		"description", "product_description", "product description", "short_description",
		"description du produit", "description produit", "descriptif", "desc",
	},
	FieldImage: {
		"image_link", "image_url", "image url", "imageurl", "image", "product_image", "large_image",
		"merchant_image_url", "lien image", "url image", "url_image", "image du produit", "photo",
	},
	FieldLink: {
		"link", "affiliate_link", "aw_deep_link", "deeplink", "deep_link", "product_url", "url",
		"tracking_url", "trackingurl", "lien", "lien produit", "lien_produit", "url produit", "url_produit",
	},
	FieldSalePrice: {
		"sale_price", "sale price", "saleprice", "discounted_price", "search_price", "promo_price",
		"prix soldé", "prix solde", "prix promo", "prix_promo", "prix réduit", "prix reduit",
	},
	FieldRegularPrice: {
		"price", "regular_price", "regular price", "store_price", "rrp_price",
		"prix", "prix de vente", "prix_ttc", "prix ttc", "prix public",
	},
	FieldBrand: {
		"brand", "brand_name", "manufacturer", "marque", "fabricant", "nom de la marque",
	},
	FieldID: {
		"id", "product_id", "aw_product_id", "item_id", "sku", "merchant_product_id",
		"identifiant", "référence", "reference", "ref", "code produit",
	},
	FieldAvailability: {
		"availability", "stock_status", "in_stock", "stock", "disponibilité", "disponibilite", "en stock",
	},
}

// ColumnMapping maps canonical fields to column indices for one header row.
type ColumnMapping map[Field]int

// ResolveColumns resolves every canonical field against header.
func ResolveColumns(header []string) ColumnMapping {
	mapping := make(ColumnMapping, len(columnAliases))
	for field := range columnAliases {
		mapping[field] = Resolve(header, field)
	}
	return mapping
}

// Resolve returns the column of the first alias of field that matches any
// header cell, compared case-insensitively after trimming, or NotFound.
func Resolve(header []string, field Field) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	for _, alias := range columnAliases[field] {
		for i, h := range normalized {
			if h == alias {
				return i
			}
		}
	}
	return NotFound
}

// Index returns the column for field, or NotFound.
func (m ColumnMapping) Index(field Field) int {
	idx, ok := m[field]
	if !ok {
		return NotFound
	}
	return idx
}

// Price returns the sale price column when present, the regular price column
// otherwise.
func (m ColumnMapping) Price() int {
	if idx := m.Index(FieldSalePrice); idx != NotFound {
		return idx
	}
	return m.Index(FieldRegularPrice)
}

// Missing lists the required fields (title, price) the header lacks.
func (m ColumnMapping) Missing() []Field {
	var missing []Field
	if m.Index(FieldTitle) == NotFound {
		missing = append(missing, FieldTitle)
	}
	if m.Price() == NotFound {
		missing = append(missing, FieldRegularPrice)
	}
	return missing
}

// MaxIndex is the furthest column any resolved field needs.
func (m ColumnMapping) MaxIndex() int {
	maxIdx := NotFound
	for _, idx := range m {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	return maxIdx
}

// Value returns the trimmed cell for field, or "" when the field is
// unresolved or the row is too short.
func (m ColumnMapping) Value(row []string, field Field) string {
	return cell(row, m.Index(field))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
