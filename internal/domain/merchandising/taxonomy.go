package merchandising

import (
	"context"
	"strings"
	"sync"
)

// Taxonomy is the immutable mapping from category key to storefront
// collection ID, built once at process start from the fixed rule tables
// plus a loaded collections snapshot. Rules whose key has no snapshot
// entry are silently ignored by the classifier.
type Taxonomy struct {
	byKey map[CategoryKey]CollectionID
}

// NewTaxonomy derives the key -> collection-ID mapping from a collections
// snapshot. A key resolves when its display title matches a collection
// title (case-insensitive) or its handle form matches a collection handle.
// Canonical gemstone names resolve the same way against their stone keys.
func NewTaxonomy(collections []Collection) *Taxonomy {
	byTitle := make(map[string]CollectionID, len(collections))
	byHandle := make(map[string]CollectionID, len(collections))
	for _, c := range collections {
		if title := strings.ToLower(strings.TrimSpace(c.Title)); title != "" {
			byTitle[title] = c.ID
		}
		if handle := strings.ToLower(strings.TrimSpace(c.Handle)); handle != "" {
			byHandle[handle] = c.ID
		}
	}

	byKey := make(map[CategoryKey]CollectionID)
	for _, key := range allCategoryKeys() {
		if id, ok := byTitle[strings.ToLower(key.DisplayTitle())]; ok {
			byKey[key] = id
			continue
		}
		if id, ok := byHandle[key.HandleForm()]; ok {
			byKey[key] = id
		}
	}

	return &Taxonomy{byKey: byKey}
}

// CollectionFor returns the collection ID mapped to the key, if any
func (t *Taxonomy) CollectionFor(key CategoryKey) (CollectionID, bool) {
	id, ok := t.byKey[key]
	return id, ok
}

// Size returns the number of resolved keys
func (t *Taxonomy) Size() int {
	return len(t.byKey)
}

// allCategoryKeys lists every key the rule tables can emit: the fixed
// keyword and shape keys plus the canonical gemstone keys.
func allCategoryKeys() []CategoryKey {
	keys := []CategoryKey{
		KeyBeads,
		KeyRoundPolished, KeyRoundFaceted, KeyRoundFrosted,
		KeyRondellePolished, KeyRondelleFaceted, KeyRondelleFrosted,
		KeyFreeform,
	}
	for _, rule := range shapeRules {
		keys = append(keys, rule.Key)
	}
	for _, stone := range defaultStoneAliases {
		keys = append(keys, stone.Stone)
	}
	return keys
}

// TaxonomyProvider memoizes taxonomy construction behind an initialization
// guard. The first Taxonomy call loads the snapshot and builds the mapping;
// later calls return the cached value without touching the source. A load
// failure is returned to every caller and is never retried; a readable
// snapshot is a startup precondition.
type TaxonomyProvider struct {
	source SnapshotSource

	once sync.Once
	tax  *Taxonomy
	err  error
}

// NewTaxonomyProvider creates a provider over the given snapshot source
func NewTaxonomyProvider(source SnapshotSource) *TaxonomyProvider {
	return &TaxonomyProvider{source: source}
}

// Taxonomy returns the memoized taxonomy, building it on first use
func (p *TaxonomyProvider) Taxonomy(ctx context.Context) (*Taxonomy, error) {
	p.once.Do(func() {
		collections, err := p.source.Load(ctx)
		if err != nil {
			p.err = err
			return
		}
		p.tax = NewTaxonomy(collections)
	})
	return p.tax, p.err
}
