// Package cluster groups news articles that describe the same incident.
package cluster

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"

	"horse.fit/threatwatch/internal/incident"
)

const (
	// SameIncidentThreshold is the title overlap at which two articles from
	// different outlets are merged.
	SameIncidentThreshold = 0.75
	// HeadlineFallbackThreshold is the looser overlap used when a stub has
	// no structured fields to match on.
	HeadlineFallbackThreshold = 0.60
)

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

var stopWords = func() map[string]struct{} {
	words := strings.Fields("the a an at to for of in on and or but is are was were be been by with from as into through during after before said reported")
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// WordSet is a set of significant title words.
type WordSet map[string]struct{}

// TitleWords lower-cases title, strips punctuation, drops stop words and
// one-letter words, and reduces what remains to English stems.
func TitleWords(title string) WordSet {
	text := nonWordRe.ReplaceAllString(strings.ToLower(title), " ")
	words := make(WordSet)
	for _, w := range strings.Fields(text) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		words[english.Stem(w, false)] = struct{}{}
	}
	return words
}

// Overlap is |a∩b| / min(|a|, |b|), or zero when either set is empty.
func Overlap(a, b WordSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for w := range small {
		if _, ok := large[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// SameIncident reports whether the overlap of a and b reaches minOverlap.
func SameIncident(a, b WordSet, minOverlap float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return Overlap(a, b) >= minOverlap
}

// DedupeByURL keeps one article per trimmed URL, preferring the earliest
// published. Articles without a URL are dropped. Output follows the order
// in which each URL was first seen.
func DedupeByURL(articles []incident.Article) []incident.Article {
	index := make(map[string]int, len(articles))
	out := make([]incident.Article, 0, len(articles))
	for _, article := range articles {
		article.URL = strings.TrimSpace(article.URL)
		if article.URL == "" {
			continue
		}
		article.OtherSources = append([]string{}, article.OtherSources...)

		pos, seen := index[article.URL]
		if !seen {
			index[article.URL] = len(out)
			out = append(out, article)
			continue
		}
		if article.PublishedKey() < out[pos].PublishedKey() {
			out[pos] = article
		}
	}
	return out
}

// Cluster merges articles whose titles overlap by at least threshold and
// collapses each group to its earliest-published member. Sibling URLs are
// carried in OtherSources. Output is sorted by publish time, newest first.
// Input is expected to be deduplicated by URL.
func Cluster(articles []incident.Article, threshold float64) []incident.Article {
	n := len(articles)
	words := make([]WordSet, n)
	for i, article := range articles {
		words[i] = TitleWords(article.Title)
	}

	sets := NewDisjointSet(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if SameIncident(words[i], words[j], threshold) {
				sets.Union(i, j)
			}
		}
	}

	var roots []int
	groups := make(map[int][]incident.Article)
	for i, article := range articles {
		root := sets.Find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], article)
	}

	out := make([]incident.Article, 0, len(roots))
	for _, root := range roots {
		out = append(out, collapse(groups[root]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedKey() > out[j].PublishedKey()
	})
	return out
}

func collapse(group []incident.Article) incident.Article {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].PublishedKey() < group[j].PublishedKey()
	})

	primary := group[0]
	seen := map[string]struct{}{primary.URL: {}}
	others := make([]string, 0, len(group)-1)
	add := func(url string) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		others = append(others, url)
	}

	for _, url := range primary.OtherSources {
		add(url)
	}
	for _, member := range group[1:] {
		add(member.URL)
		for _, url := range member.OtherSources {
			add(url)
		}
	}
	primary.OtherSources = others
	return primary
}

// Run deduplicates articles by URL and clusters the result with the
// same-incident threshold. It also returns the count after URL dedup.
func Run(articles []incident.Article) (int, []incident.Article) {
	unique := DedupeByURL(articles)
	return len(unique), Cluster(unique, SameIncidentThreshold)
}
