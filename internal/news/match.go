package news

import (
	"sort"
	"strings"
	"unicode"

	"StockSage/internal/model"
)

// MatchSymbols returns the stock symbols whose aliases appear in the
// text, in sorted order so repeated scans of the same text tag
// identically. Short aliases require word boundaries; longer names match
// as plain substrings, case-insensitive.
func MatchSymbols(text string) []string {
	lower := strings.ToLower(text)
	upper := strings.ToUpper(text)

	symbols := make([]string, 0, len(stockAliases))
	for symbol := range stockAliases {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var matched []string
	for _, symbol := range symbols {
		for _, alias := range stockAliases[symbol] {
			var hit bool
			if len(alias) <= 3 {
				hit = containsWord(upper, strings.ToUpper(alias))
			} else {
				hit = strings.Contains(lower, strings.ToLower(alias))
			}
			if hit {
				matched = append(matched, symbol)
				break
			}
		}
	}
	return matched
}

// containsWord reports whether word occurs in text delimited by
// non-alphanumeric characters on both sides.
func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isWordChar(rune(text[i-1]))
		afterIdx := i + len(word)
		after := afterIdx >= len(text) || !isWordChar(rune(text[afterIdx]))
		if before && after {
			return true
		}
		start = i + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// TitleSimilarity estimates how alike two headlines are on a 0..1 scale
// using character bigram overlap. Two wire-service copies of the same
// story score well above the 0.8 dedup threshold.
func TitleSimilarity(a, b string) float64 {
	ba := bigrams(strings.ToLower(a))
	bb := bigrams(strings.ToLower(b))
	if len(ba) == 0 || len(bb) == 0 {
		if a == b {
			return 1
		}
		return 0
	}
	var common int
	for bg, n := range ba {
		if m := bb[bg]; m > 0 {
			if m < n {
				common += m
			} else {
				common += n
			}
		}
	}
	total := 0
	for _, n := range ba {
		total += n
	}
	for _, n := range bb {
		total += n
	}
	return 2 * float64(common) / float64(total)
}

// ForStock filters articles down to those relevant to one symbol,
// scored by where the mention appears: a title hit outweighs a tagged
// symbol, which outweighs a body mention.
func ForStock(symbol string, articles []model.Article) []model.Article {
	symbol = strings.ToUpper(symbol)
	aliases := Aliases(symbol)

	type scored struct {
		article model.Article
		score   int
	}
	var relevant []scored
	for _, article := range articles {
		score := 0
		for _, s := range article.Symbols {
			if s == symbol {
				score += 3
				break
			}
		}
		title := strings.ToLower(article.Title)
		for _, alias := range aliases {
			if strings.Contains(title, strings.ToLower(alias)) {
				score += 5
				break
			}
		}
		content := strings.ToLower(article.Content)
		for _, alias := range aliases {
			if strings.Contains(content, strings.ToLower(alias)) {
				score++
				break
			}
		}
		if score > 0 {
			relevant = append(relevant, scored{article, score})
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].score != relevant[j].score {
			return relevant[i].score > relevant[j].score
		}
		return relevant[i].article.PublishedDate.After(relevant[j].article.PublishedDate)
	})

	out := make([]model.Article, len(relevant))
	for i, r := range relevant {
		out[i] = r.article
	}
	return out
}

func bigrams(s string) map[string]int {
	runes := []rune(s)
	out := make(map[string]int, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		out[string(runes[i:i+2])]++
	}
	return out
}
