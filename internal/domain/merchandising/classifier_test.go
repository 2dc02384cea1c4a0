package merchandising

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func testCollections() []Collection {
	return []Collection{
		{ID: 101, Title: "Beads", Handle: "beads"},
		{ID: 102, Title: "Round Polished", Handle: "round-polished"},
		{ID: 103, Title: "Round Faceted", Handle: "round-faceted"},
		{ID: 104, Title: "Round Frosted", Handle: "round-frosted"},
		{ID: 105, Title: "Rondelle Polished", Handle: "rondelle-polished"},
		{ID: 106, Title: "Rondelle Faceted", Handle: "rondelle-faceted"},
		{ID: 107, Title: "Rondelle Frosted", Handle: "rondelle-frosted"},
		{ID: 108, Title: "Freeform", Handle: "freeform"},
		{ID: 109, Title: "Heart", Handle: "heart"},
		{ID: 110, Title: "Teardrop", Handle: "teardrop"},
		{ID: 201, Title: "Rose Quartz", Handle: "rose-quartz"},
		{ID: 202, Title: "Tiger Eye", Handle: "tiger-eye"},
		{ID: 203, Title: "Lapis Lazuli", Handle: "lapis-lazuli"},
		{ID: 204, Title: "Amethyst", Handle: "amethyst"},
		{ID: 205, Title: "Clear Quartz", Handle: "clear-quartz"},
	}
}

func testClassifier() *Classifier {
	return NewClassifier(NewTaxonomy(testCollections()))
}

func TestClassifier_WordBoundary(t *testing.T) {
	classifier := testClassifier()

	tests := []struct {
		name      string
		title     string
		wantBeads bool
	}{
		{name: "standalone word", title: "Gemstone Beads 8mm", wantBeads: true},
		{name: "lowercase", title: "gemstone beads", wantBeads: true},
		{name: "uppercase", title: "GEMSTONE BEADS", wantBeads: true},
		{name: "followed by punctuation", title: "Beads, strand of 40", wantBeads: true},
		{name: "substring of longer word", title: "BEADSTORM limited edition", wantBeads: false},
		{name: "prefixed inside word", title: "Megabeads", wantBeads: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Classify(tt.title)
			if tt.wantBeads {
				assert.Contains(t, result, CollectionID(101))
			} else {
				assert.NotContains(t, result, CollectionID(101))
			}
		})
	}
}

func TestClassifier_FinishCombinations(t *testing.T) {
	classifier := testClassifier()

	t.Run("round faceted", func(t *testing.T) {
		result := classifier.Classify("Round Faceted Garnet 6mm")
		assert.Contains(t, result, CollectionID(103))
		assert.NotContains(t, result, CollectionID(102))
		assert.NotContains(t, result, CollectionID(104))
	})

	t.Run("finish stem form", func(t *testing.T) {
		result := classifier.Classify("Round polish finish")
		assert.Contains(t, result, CollectionID(102))
	})

	t.Run("multiple finishes are non-exclusive", func(t *testing.T) {
		result := classifier.Classify("Round Polished and Frosted mix")
		assert.Contains(t, result, CollectionID(102))
		assert.Contains(t, result, CollectionID(104))
	})

	t.Run("all three finishes", func(t *testing.T) {
		result := classifier.Classify("Round polished faceted frosted sampler")
		assert.Subset(t, result, []CollectionID{102, 103, 104})
	})

	t.Run("rondelle shares the finish pattern", func(t *testing.T) {
		result := classifier.Classify("Rondelle Faceted Spacers")
		assert.Contains(t, result, CollectionID(106))
		assert.NotContains(t, result, CollectionID(103))
	})

	t.Run("finish word alone does not match", func(t *testing.T) {
		result := classifier.Classify("Faceted drops")
		assert.NotContains(t, result, CollectionID(103))
		assert.NotContains(t, result, CollectionID(106))
	})
}

func TestClassifier_StoneAliases(t *testing.T) {
	classifier := testClassifier()

	t.Run("alias without canonical name still maps", func(t *testing.T) {
		result := classifier.Classify("Rock Crystal sphere 20mm")
		assert.Contains(t, result, CollectionID(205))
	})

	t.Run("alias spelling variants", func(t *testing.T) {
		for _, title := range []string{"Tiger's Eye bracelet", "Tigers Eye bracelet", "Tiger Eye bracelet"} {
			result := classifier.Classify(title)
			assert.Contains(t, result, CollectionID(202), "title %q", title)
		}
	})

	t.Run("short alias", func(t *testing.T) {
		result := classifier.Classify("Lapis strand")
		assert.Contains(t, result, CollectionID(203))
	})

	t.Run("first matching alias stops the scan", func(t *testing.T) {
		keys := classifier.MatchKeys("Tiger's Eye also sold as Tigers Eye")
		count := 0
		for _, k := range keys {
			if k == CategoryKey("TIGER_EYE") {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestClassifier_Idempotence(t *testing.T) {
	classifier := testClassifier()

	title := "Round Frosted Amethyst Beads"
	first := classifier.Classify(title)
	second := classifier.Classify(title)

	assert.Equal(t, first, second)
}

func TestClassifier_EmptyTitle(t *testing.T) {
	classifier := testClassifier()

	assert.Empty(t, classifier.Classify(""))
	assert.Empty(t, classifier.Classify("   "))
	assert.Empty(t, classifier.MatchKeys(""))
}

func TestClassifier_FreeformMatchesOnce(t *testing.T) {
	classifier := testClassifier()

	result := classifier.Classify("Raw rough Amethyst chunk")

	count := 0
	for _, id := range result {
		if id == 108 {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, result, CollectionID(204))
}

func TestClassifier_UnresolvedKeySkipped(t *testing.T) {
	// Taxonomy without a Heart collection: the HEART rule still matches
	// but resolves to nothing.
	taxonomy := NewTaxonomy([]Collection{
		{ID: 101, Title: "Beads", Handle: "beads"},
	})
	classifier := NewClassifier(taxonomy)

	keys := classifier.MatchKeys("Heart beads")
	assert.Contains(t, keys, KeyHeart)

	result := classifier.Classify("Heart beads")
	assert.Equal(t, []CollectionID{101}, result)
}

func TestClassifier_RoundFacetedRoseQuartzBeads(t *testing.T) {
	classifier := testClassifier()

	result := classifier.Classify("Round Faceted Rose Quartz Beads 8mm")

	require.Len(t, result, 3)
	assert.ElementsMatch(t, []CollectionID{103, 101, 201}, result)
}
