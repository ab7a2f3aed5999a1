package cluster

import (
	"reflect"
	"testing"

	"horse.fit/threatwatch/internal/incident"
)

func TestDisjointSet(t *testing.T) {
	t.Parallel()

	sets := NewDisjointSet(5)
	sets.Union(0, 1)
	sets.Union(3, 4)
	sets.Union(1, 4)

	root := sets.Find(0)
	for _, i := range []int{1, 3, 4} {
		if sets.Find(i) != root {
			t.Fatalf("expected %d to share root %d, got %d", i, root, sets.Find(i))
		}
	}
	if sets.Find(2) == root {
		t.Fatalf("expected 2 to stay in its own set")
	}
	if sets.Len() != 5 {
		t.Fatalf("unexpected size %d", sets.Len())
	}
}

func TestTitleWords(t *testing.T) {
	t.Parallel()

	words := TitleWords("The bomb threat at Lincoln High, a student said!")
	for _, want := range []string{"bomb", "threat", "lincoln", "high"} {
		if _, ok := words[want]; !ok {
			t.Fatalf("expected %q in %v", want, words)
		}
	}
	for _, unwanted := range []string{"the", "at", "a", "said", ","} {
		if _, ok := words[unwanted]; ok {
			t.Fatalf("did not expect %q in %v", unwanted, words)
		}
	}
	if len(TitleWords("")) != 0 {
		t.Fatalf("expected empty title to have no words")
	}
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	a := WordSet{"lincoln": {}, "high": {}, "bomb": {}, "threat": {}}
	b := WordSet{"lincoln": {}, "high": {}, "bomb": {}, "threat": {}, "evacu": {}, "school": {}}
	if got := Overlap(a, b); got != 1 {
		t.Fatalf("expected subset overlap 1, got %f", got)
	}
	if got := Overlap(a, WordSet{}); got != 0 {
		t.Fatalf("expected empty overlap 0, got %f", got)
	}
	if SameIncident(WordSet{}, WordSet{}, 0) {
		t.Fatalf("expected empty sets never to match")
	}
}

func TestLincolnHeadlinesCluster(t *testing.T) {
	t.Parallel()

	a := TitleWords("Lincoln High School bomb threat prompts evacuation")
	b := TitleWords("Bomb threat reported at Lincoln High, students evacuated")
	if got := Overlap(a, b); got < SameIncidentThreshold {
		t.Fatalf("expected overlap >= %.2f, got %f", SameIncidentThreshold, got)
	}

	articles := []incident.Article{
		{Title: "Bomb threat reported at Lincoln High, students evacuated", URL: "https://b.example/2", Published: "2026-03-09T15:00:00Z"},
		{Title: "Lincoln High School bomb threat prompts evacuation", URL: "https://a.example/1", Published: "2026-03-09T13:00:00Z"},
	}
	out := Cluster(articles, SameIncidentThreshold)
	if len(out) != 1 {
		t.Fatalf("expected one cluster, got %d", len(out))
	}
	if out[0].URL != "https://a.example/1" {
		t.Fatalf("expected earliest article as representative, got %q", out[0].URL)
	}
	if !reflect.DeepEqual(out[0].OtherSources, []string{"https://b.example/2"}) {
		t.Fatalf("unexpected other_sources %v", out[0].OtherSources)
	}
}

func TestDedupeByURL(t *testing.T) {
	t.Parallel()

	articles := []incident.Article{
		{Title: "later copy", URL: " https://example.com/a ", Published: "2026-03-09T15:00:00Z"},
		{Title: "no url", URL: "  "},
		{Title: "other", URL: "https://example.com/b", Published: "2026-03-08T10:00:00Z"},
		{Title: "earlier copy", URL: "https://example.com/a", Published: "2026-03-09T09:00:00Z"},
	}
	out := DedupeByURL(articles)
	if len(out) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(out))
	}
	if out[0].URL != "https://example.com/a" || out[0].Title != "earlier copy" {
		t.Fatalf("expected earliest copy of /a first, got %+v", out[0])
	}
	if out[1].URL != "https://example.com/b" {
		t.Fatalf("unexpected second article %+v", out[1])
	}
}

func TestClusterOrdersNewestFirstAndIsIdempotent(t *testing.T) {
	t.Parallel()

	articles := []incident.Article{
		{Title: "Lincoln High School bomb threat prompts evacuation", URL: "https://a.example/1", Published: "2026-03-09T13:00:00Z"},
		{Title: "Oak Ridge Elementary placed on lockdown after gun report", URL: "https://c.example/3", Published: "2026-03-10T08:00:00Z"},
		{Title: "Bomb threat reported at Lincoln High, students evacuated", URL: "https://b.example/2", Published: "2026-03-09T15:00:00Z"},
		{Title: "Police investigate threat at Westview Middle School", URL: "https://d.example/4", Published: "Mon, 02 Mar 2026 10:00:00 +0000"},
	}

	afterDedup, first := Run(articles)
	if afterDedup != 4 {
		t.Fatalf("expected 4 articles after URL dedup, got %d", afterDedup)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(first))
	}
	wantOrder := []string{"https://c.example/3", "https://a.example/1", "https://d.example/4"}
	for i, url := range wantOrder {
		if first[i].URL != url {
			t.Fatalf("cluster %d: expected %s, got %s", i, url, first[i].URL)
		}
	}

	second := Cluster(first, SameIncidentThreshold)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected re-clustering to be a no-op\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClusterInheritsSiblingSources(t *testing.T) {
	t.Parallel()

	articles := []incident.Article{
		{Title: "Lincoln High School bomb threat prompts evacuation", URL: "https://a.example/1", Published: "2026-03-09T13:00:00Z", OtherSources: []string{"https://x.example/9"}},
		{Title: "Bomb threat at Lincoln High School prompts evacuation", URL: "https://b.example/2", Published: "2026-03-09T12:00:00Z", OtherSources: []string{"https://y.example/8"}},
	}
	out := Cluster(articles, SameIncidentThreshold)
	if len(out) != 1 {
		t.Fatalf("expected one cluster, got %d", len(out))
	}
	want := []string{"https://y.example/8", "https://a.example/1", "https://x.example/9"}
	if out[0].URL != "https://b.example/2" || !reflect.DeepEqual(out[0].OtherSources, want) {
		t.Fatalf("unexpected representative %+v", out[0])
	}
}
