package merchandising

// ClassificationRule is one entry of the declarative keyword rule table.
// A rule matches when every word group has at least one whole-word match
// in the title. Rules are evaluated in table order and each matching rule
// adds its key; rules are not exclusive, so one title can satisfy any
// number of them.
type ClassificationRule struct {
	// Key is the category the rule maps to
	Key CategoryKey
	// Groups is the conjunction of word alternatives: every group must
	// match via at least one of its words
	Groups [][]string
}

func word(key CategoryKey, words ...string) ClassificationRule {
	return ClassificationRule{Key: key, Groups: [][]string{words}}
}

func combo(key CategoryKey, base string, finishes ...string) ClassificationRule {
	return ClassificationRule{Key: key, Groups: [][]string{{base}, finishes}}
}

// shapeRules maps standalone shape words to their collections
var shapeRules = []ClassificationRule{
	word(KeyOval, "OVAL"),
	word(KeyCube, "CUBE", "CUBES"),
	word(KeyStar, "STAR", "STARS"),
	word(KeyHeart, "HEART", "HEARTS"),
	word(KeyTeardrop, "TEARDROP", "TEARDROPS", "DROP", "DROPS", "BRIOLETTE"),
	word(KeyNugget, "NUGGET", "NUGGETS"),
	word(KeyChips, "CHIP", "CHIPS"),
	word(KeyCoin, "COIN", "COINS"),
	word(KeyTube, "TUBE", "TUBES"),
	word(KeyBicone, "BICONE", "BICONES"),
}

// freeformWords all map to the single FREEFORM collection; several of them
// matching the same title still adds the key once
var freeformWords = []string{
	"FREEFORM", "IRREGULAR", "RAW", "ROUGH", "TUMBLED", "SLAB", "SLICE",
}

// defaultRules is the full ordered keyword rule table. Finish combinations
// are deliberately non-exclusive: a title carrying ROUND together with both
// POLISHED and FROSTED adds both ROUND_POLISHED and ROUND_FROSTED.
func defaultRules() []ClassificationRule {
	rules := []ClassificationRule{
		word(KeyBeads, "BEADS"),

		combo(KeyRoundPolished, "ROUND", "POLISH", "POLISHED"),
		combo(KeyRoundFaceted, "ROUND", "FACET", "FACETED"),
		combo(KeyRoundFrosted, "ROUND", "FROST", "FROSTED"),

		combo(KeyRondellePolished, "RONDELLE", "POLISH", "POLISHED"),
		combo(KeyRondelleFaceted, "RONDELLE", "FACET", "FACETED"),
		combo(KeyRondelleFrosted, "RONDELLE", "FROST", "FROSTED"),
	}
	rules = append(rules, shapeRules...)
	rules = append(rules, word(KeyFreeform, freeformWords...))
	return rules
}
