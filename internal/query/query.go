// Package query holds the pure search, filter and ranking passes over the
// cached article collection. Nothing here mutates its input or touches
// the network.
package query

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/mamadkami/weblog/internal/model"
)

// Search returns the articles where query is a case-insensitive substring
// of the title, content, category or any tag. Collection order is kept.
func Search(articles []model.Article, query string) []model.Article {
	q := strings.ToLower(query)

	var out []model.Article
	for _, a := range articles {
		if containsFold(a.Title, q) || containsFold(a.Content, q) ||
			containsFold(a.Category, q) || anyTagContains(a.Tags, q) {
			out = append(out, a)
		}
	}

	return out
}

// Apply narrows the collection by every non-empty field of the filter,
// conjunctively. The free-text field matches title, content and tags only;
// category is its own exact-match field here. Dates compare
// lexicographically, which is safe for YYYY-MM-DD, and both bounds are
// inclusive. A filter with all fields empty returns the full collection.
func Apply(articles []model.Article, f model.SearchFilter) []model.Article {
	q := strings.ToLower(f.Query)

	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if f.Query != "" && !containsFold(a.Title, q) && !containsFold(a.Content, q) && !anyTagContains(a.Tags, q) {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Author != "" && a.Author != f.Author {
			continue
		}
		if f.DateFrom != "" && a.PublishDate < f.DateFrom {
			continue
		}
		if f.DateTo != "" && a.PublishDate > f.DateTo {
			continue
		}
		if len(f.Tags) > 0 && !tagsOverlap(a.Tags, f.Tags) {
			continue
		}
		out = append(out, a)
	}

	return out
}

// Related ranks every other article against src by
// 3×(same category) + 2×(shared tag count), drops zero scores and returns
// the top n. The sort is stable, so ties keep collection order. Fewer than
// n results, or none at all, is normal.
func Related(articles []model.Article, src model.Article, n int) []model.Article {
	type scored struct {
		article model.Article
		score   int
	}

	srcTags := make(map[string]struct{}, len(src.Tags))
	for _, t := range src.Tags {
		srcTags[t] = struct{}{}
	}

	var candidates []scored
	for _, a := range articles {
		if a.ID == src.ID {
			continue
		}

		score := 0
		if a.Category == src.Category {
			score += 3
		}
		for _, t := range a.Tags {
			if _, ok := srcTags[t]; ok {
				score += 2
			}
		}

		if score > 0 {
			candidates = append(candidates, scored{article: a, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]model.Article, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.article)
	}

	return out
}

// Trending picks n articles from a fresh random permutation of the
// collection. The random source is injected so callers can seed it; the
// selection is recomputed on every call and deliberately non-deterministic
// in production.
func Trending(articles []model.Article, rnd *rand.Rand, n int) []model.Article {
	shuffled := make([]model.Article, len(articles))
	copy(shuffled, articles)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}

	return shuffled
}

func containsFold(s, lowered string) bool {
	return strings.Contains(strings.ToLower(s), lowered)
}

func anyTagContains(tags []string, lowered string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), lowered) {
			return true
		}
	}

	return false
}

func tagsOverlap(articleTags, filterTags []string) bool {
	for _, want := range filterTags {
		for _, have := range articleTags {
			if want == have {
				return true
			}
		}
	}

	return false
}
