package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/newsdesk/internal/models"
)

func titles(articles []models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func articlesFor(ts ...string) []models.Article {
	out := make([]models.Article, len(ts))
	for i, t := range ts {
		out[i] = models.Article{Title: t}
	}
	return out
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "apple reports record profit", Normalize("  Apple reports RECORD profit! "))
	assert.Equal(t, "sp 500 hits 5000", Normalize("S&P 500 hits 5,000"))
	assert.Equal(t, "", Normalize("?!..."))
	assert.Equal(t, "nasdaq100 rallies", Normalize("NASDAQ_100 rallies"))
	assert.Equal(t, "", Normalize("__"))
}

func TestSimilarity_Threshold(t *testing.T) {
	near := Similarity("apple reports record profit", "apple reports record profits")
	assert.Greater(t, near, Threshold)

	far := Similarity("apple reports record profit", "tesla unveils new factory")
	assert.Less(t, far, 0.5)

	assert.Equal(t, 1.0, Similarity("same", "same"))
}

func TestDedupe_FirstSeenWins(t *testing.T) {
	in := []models.Article{
		{Title: "Apple reports record profit", Source: "first"},
		{Title: "Apple reports record profits", Source: "second"},
		{Title: "Tesla unveils new factory"},
	}

	out := Dedupe(in)

	assert.Equal(t, []string{"Apple reports record profit", "Tesla unveils new factory"}, titles(out))
	assert.Equal(t, "first", out[0].Source)
}

func TestDedupe_PunctuationOnlyDifference(t *testing.T) {
	out := Dedupe(articlesFor("Fed holds rates steady", "Fed holds rates steady."))
	assert.Len(t, out, 1)
}

func TestDedupe_OrderPreservedWithoutDuplicates(t *testing.T) {
	in := articlesFor(
		"Oil slips on demand worries",
		"Gold hits record high",
		"ECB signals rate cut",
		"Nvidia shares jump after earnings",
	)

	out := Dedupe(in)
	assert.Equal(t, titles(in), titles(out))
}

func TestDedupe_Idempotent(t *testing.T) {
	in := articlesFor(
		"Apple reports record profit",
		"Apple reports record profits",
		"Apple report record profits",
		"Markets rally on jobs data",
		"Markets rally on job data",
		"ASML raises outlook",
	)

	once := Dedupe(in)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestDedupe_DropsEmptyNormalizedTitles(t *testing.T) {
	out := Dedupe(articlesFor("", "!!!", "Real headline"))
	assert.Equal(t, []string{"Real headline"}, titles(out))
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}
