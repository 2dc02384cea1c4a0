package merchandising

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperCaser = cases.Upper(language.English)

// Classifier maps a product title to the set of collections it belongs to.
// It is a pure function over its input: no I/O, no error conditions, and
// classifying the same title twice yields the identical result.
type Classifier struct {
	taxonomy *Taxonomy
	rules    []ClassificationRule
	stones   []StoneAliases
	patterns map[string]*regexp.Regexp
}

// NewClassifier builds a classifier over the given taxonomy using the fixed
// keyword rule table and gemstone alias table. All word patterns are
// compiled once here; Classify itself does lookups only.
func NewClassifier(taxonomy *Taxonomy) *Classifier {
	c := &Classifier{
		taxonomy: taxonomy,
		rules:    defaultRules(),
		stones:   defaultStoneAliases,
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, rule := range c.rules {
		for _, group := range rule.Groups {
			for _, w := range group {
				c.compile(w)
			}
		}
	}
	for _, s := range c.stones {
		for _, alias := range s.Aliases {
			c.compile(alias)
		}
	}
	return c
}

func (c *Classifier) compile(word string) {
	if _, ok := c.patterns[word]; ok {
		return
	}
	// Whole-word semantics: "BEADS" must match the word "beads" but never
	// a longer word such as "beadstorm".
	c.patterns[word] = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
}

func (c *Classifier) matchWord(title, word string) bool {
	p, ok := c.patterns[word]
	if !ok {
		return false
	}
	return p.MatchString(title)
}

func (c *Classifier) matchAny(title string, words []string) bool {
	for _, w := range words {
		if c.matchWord(title, w) {
			return true
		}
	}
	return false
}

// normalizeTitle upper-cases the title and collapses whitespace runs so
// that multi-word aliases match regardless of spacing.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(upperCaser.String(title)), " ")
}

// MatchKeys returns the category keys the title satisfies, deduplicated in
// insertion order, regardless of whether the taxonomy resolves them.
func (c *Classifier) MatchKeys(title string) []CategoryKey {
	normalized := normalizeTitle(title)
	if normalized == "" {
		return nil
	}

	var keys []CategoryKey
	seen := make(map[CategoryKey]bool)
	add := func(key CategoryKey) {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	for _, rule := range c.rules {
		matched := true
		for _, group := range rule.Groups {
			if !c.matchAny(normalized, group) {
				matched = false
				break
			}
		}
		if matched {
			add(rule.Key)
		}
	}

	// First matching alias wins per stone; remaining aliases of the same
	// stone are not scanned.
	for _, s := range c.stones {
		for _, alias := range s.Aliases {
			if c.matchWord(normalized, alias) {
				add(s.Stone)
				break
			}
		}
	}

	return keys
}

// Classify returns the collection IDs the title belongs to, deduplicated in
// insertion order. Keys without a taxonomy entry are skipped. An empty or
// blank title yields an empty result.
func (c *Classifier) Classify(title string) []CollectionID {
	var out []CollectionID
	seen := make(map[CollectionID]bool)
	for _, key := range c.MatchKeys(title) {
		id, ok := c.taxonomy.CollectionFor(key)
		if !ok {
			continue
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
