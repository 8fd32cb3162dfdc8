package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdblog/internal/domain/content"
)

func art(file, date string, tags ...string) content.Article {
	if tags == nil {
		tags = []string{}
	}
	return content.Article{Title: file, Date: date, Tags: tags, Filename: file + ".html"}
}

func filenames(arts []content.Article) []string {
	out := make([]string, 0, len(arts))
	for _, a := range arts {
		out = append(out, a.Filename)
	}
	return out
}

func sample() []content.Article {
	return []content.Article{
		art("c", "2024-03-02", "go"),
		art("a", "2024-01-15", "go", "rust"),
		art("b", "2023-12-31", "Go", "go "),
		art("d", "2024-01-20"),
	}
}

func TestByCategory_KeepsInputOrder(t *testing.T) {
	got := ByCategory(sample())

	require.Len(t, got, 3)
	assert.Equal(t, []string{"c.html"}, filenames(got["2024-03"]))
	assert.Equal(t, []string{"a.html", "d.html"}, filenames(got["2024-01"]))
	assert.Equal(t, []string{"b.html"}, filenames(got["2023-12"]))
}

func TestByTag_ExactKeys(t *testing.T) {
	got := ByTag(sample())

	assert.Equal(t, []string{"c.html", "a.html"}, filenames(got["go"]))
	assert.Equal(t, []string{"a.html"}, filenames(got["rust"]))
	assert.Equal(t, []string{"b.html"}, filenames(got["Go"]))
	assert.Equal(t, []string{"b.html"}, filenames(got["go "]))
	assert.Len(t, got, 4)
}

func TestByTag_DuplicateTagFiledOnce(t *testing.T) {
	got := ByTag([]content.Article{art("x", "2024-01-01", "a", "b", "b", "c")})
	assert.Equal(t, []string{"x.html"}, filenames(got["b"]))
}

func TestByYear_SortedDistinctCategories(t *testing.T) {
	got := ByYear([]content.Article{
		art("x", "2024-03-02"),
		art("y", "2024-01-15"),
		art("z", "2024-03-30"),
		art("w", "2023-07-01"),
	})

	assert.Equal(t, []string{"2024-01", "2024-03"}, got["2024"])
	assert.Equal(t, []string{"2023-07"}, got["2023"])
	assert.Len(t, got, 2)
}

func TestAggregate_Idempotent(t *testing.T) {
	in := sample()
	before := make([]content.Article, len(in))
	copy(before, in)

	first := Aggregate(in)
	second := Aggregate(in)

	assert.Equal(t, first, second)
	assert.Equal(t, before, in, "input must not be mutated")
}

func TestAggregate_Empty(t *testing.T) {
	pd := Aggregate(nil)
	assert.Empty(t, pd.ByCategory)
	assert.Empty(t, pd.ByTag)
	assert.Empty(t, pd.ByYear)
}

func TestGroupBy_CustomKey(t *testing.T) {
	got := GroupBy(sample(), func(a content.Article) []string {
		if len(a.Tags) == 0 {
			return nil
		}
		return []string{"tagged"}
	})
	assert.Equal(t, []string{"c.html", "a.html", "b.html"}, filenames(got["tagged"]))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-03"}, SortedKeys(ByCategory(sample())))
	assert.Empty(t, SortedKeys(map[string]int{}))
}

func TestSortByDateDesc(t *testing.T) {
	in := []content.Article{art("old", "2023-01-01"), art("new", "2024-01-01")}
	got := SortByDateDesc(in)

	assert.Equal(t, []string{"new.html", "old.html"}, filenames(got))
	assert.Equal(t, []string{"old.html", "new.html"}, filenames(in), "input must not be reordered")
}

func TestSortByDateDesc_StableForEqualDates(t *testing.T) {
	in := []content.Article{art("first", "2024-01-01"), art("second", "2024-01-01"), art("newer", "2024-02-01")}
	assert.Equal(t, []string{"newer.html", "first.html", "second.html"}, filenames(SortByDateDesc(in)))
}

func TestLatest(t *testing.T) {
	assert.Equal(t, []string{"c.html", "d.html"}, filenames(Latest(sample(), 2)))
	assert.Len(t, Latest(sample(), 0), 4)
	assert.Len(t, Latest(sample(), 10), 4)
}
