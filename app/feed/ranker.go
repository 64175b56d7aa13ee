package feed

import (
	"sort"
	"strings"
)

const (
	scoreExactName    = 100
	scoreNamePrefix   = 80
	scoreNameContains = 60
	scoreBrand        = 40
	scoreDescription  = 20
	scoreWordPrefix   = 30
	scoreWordContains = 10
)

type SearchResult struct {
	Product Product
	Score   int
}

type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Run returns the products matching any query token, best score first. An
// empty query returns products unchanged.
func (r *Ranker) Run(products []Product, query string) []Product {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return products
	}

	results := r.Score(products, tokens)
	ranked := make([]Product, len(results))
	for i, res := range results {
		ranked[i] = res.Product
	}
	return ranked
}

// Score filters and scores products against tokens and sorts them by
// descending score. Equal scores keep input order.
func (r *Ranker) Score(products []Product, tokens []string) []SearchResult {
	results := make([]SearchResult, 0, len(products))
	for _, product := range products {
		name := strings.ToLower(product.Name)
		brand := strings.ToLower(product.Brand)
		description := strings.ToLower(product.Description)

		if !r.matches(tokens, name, brand, description) {
			continue
		}
		results = append(results, SearchResult{
			Product: product,
			Score:   r.score(tokens, name, brand, description),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (r *Ranker) matches(tokens []string, name, brand, description string) bool {
	for _, token := range tokens {
		if strings.Contains(name, token) || strings.Contains(description, token) || strings.Contains(brand, token) {
			return true
		}
	}
	return false
}

func (r *Ranker) score(tokens []string, name, brand, description string) int {
	words := strings.Fields(name)
	score := 0

	for _, token := range tokens {
		switch {
		case name == token:
			score += scoreExactName
		case strings.HasPrefix(name, token):
			score += scoreNamePrefix
		case strings.Contains(name, token):
			score += scoreNameContains
		}

		if strings.Contains(brand, token) {
			score += scoreBrand
		}
		if strings.Contains(description, token) {
			score += scoreDescription
		}

		for _, word := range words {
			if strings.HasPrefix(word, token) {
				score += scoreWordPrefix
			} else if strings.Contains(word, token) {
				score += scoreWordContains
			}
		}
	}

	return score
}

func queryTokens(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
