package search

import (
	"testing"

	"github.com/overtalkerr/overtalkerr/internal/media"
)

func titles(results []media.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestMatch_FiltersAndSorts(t *testing.T) {
	results := []media.SearchResult{
		{ID: 1, Title: "Completely Unrelated Documentary"},
		{ID: 2, Title: "The Matrix Reloaded"},
		{ID: 3, Title: "The Matrix"},
	}

	matched := Match("the matrix", results, ThresholdDefault)
	if len(matched) < 2 {
		t.Fatalf("Match() kept %d results, want at least the two Matrix titles", len(matched))
	}
	if matched[0].Title != "The Matrix" {
		t.Errorf("matched[0] = %q, want the exact title first", matched[0].Title)
	}
	for _, r := range matched {
		if r.Title == "Completely Unrelated Documentary" {
			t.Error("Match() kept an unrelated title above threshold")
		}
		if r.FuzzyScore < ThresholdDefault {
			t.Errorf("%q scored %d, below threshold", r.Title, r.FuzzyScore)
		}
	}
}

func TestMatch_ToleratesReordering(t *testing.T) {
	results := []media.SearchResult{
		{ID: 1, Title: "Park Jurassic"},
	}
	matched := Match("jurassic park", results, ThresholdDefault)
	if len(matched) != 1 {
		t.Fatal("token-order-insensitive metric should keep a reordered title")
	}
}

func TestMatch_Idempotent(t *testing.T) {
	results := []media.SearchResult{
		{ID: 1, Title: "Dune"},
		{ID: 2, Title: "Dune: Part Two"},
		{ID: 3, Title: "Dune: Prophecy"},
	}

	once := Match("dune", results, ThresholdDefault)
	twice := Match("dune", once, ThresholdDefault)

	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID || once[i].FuzzyScore != twice[i].FuzzyScore {
			t.Errorf("position %d differs: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestMatch_StableOnTies(t *testing.T) {
	results := []media.SearchResult{
		{ID: 1, Title: "Dune"},
		{ID: 2, Title: "Dune"},
	}
	matched := Match("dune", results, ThresholdDefault)
	if len(matched) != 2 || matched[0].ID != 1 || matched[1].ID != 2 {
		t.Errorf("equal scores must keep incoming order, got %v", titles(matched))
	}
}

func TestMatch_Empty(t *testing.T) {
	if got := Match("dune", nil, ThresholdDefault); len(got) != 0 {
		t.Errorf("Match() on empty input = %v", got)
	}
}

func TestBestSuggestion(t *testing.T) {
	results := []media.SearchResult{
		{ID: 1, Title: "Jurassic Park"},
		{ID: 2, Title: "Totally Different"},
	}

	best, ok := BestSuggestion("jurasic park", results)
	if !ok {
		t.Fatal("BestSuggestion() found nothing for a near-miss query")
	}
	if best.ID != 1 {
		t.Errorf("best = %q, want Jurassic Park", best.Title)
	}

	if _, ok := BestSuggestion("zzzzqqqq", []media.SearchResult{{ID: 3, Title: "Frozen"}}); ok {
		t.Error("BestSuggestion() suggested a title with no resemblance")
	}

	if _, ok := BestSuggestion("anything", nil); ok {
		t.Error("BestSuggestion() on empty input should find nothing")
	}
}
