package merchandising

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CollectionID identifies a catalog collection at the storefront
type CollectionID int64

// String returns the decimal form of the collection ID
func (id CollectionID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Collection is one entry of the collections snapshot: a named grouping of
// catalog products maintained by the storefront. The snapshot is read-only
// input refreshed out-of-band; this service never creates or mutates
// collections themselves, only product memberships.
type Collection struct {
	// ID is the storefront-assigned collection identifier
	ID CollectionID `json:"id"`
	// Title is the human-readable collection name, e.g. "Rose Quartz"
	Title string `json:"title"`
	// Handle is the URL-safe collection slug, e.g. "rose-quartz"
	Handle string `json:"handle"`
}

// CategoryKey names one classification category. Keys are stable internal
// identifiers; their display and handle forms are matched against snapshot
// collection metadata to resolve the storefront collection ID.
type CategoryKey string

// Classification keys for keyword and shape rules
const (
	KeyBeads CategoryKey = "BEADS"

	KeyRoundPolished CategoryKey = "ROUND_POLISHED"
	KeyRoundFaceted  CategoryKey = "ROUND_FACETED"
	KeyRoundFrosted  CategoryKey = "ROUND_FROSTED"

	KeyRondellePolished CategoryKey = "RONDELLE_POLISHED"
	KeyRondelleFaceted  CategoryKey = "RONDELLE_FACETED"
	KeyRondelleFrosted  CategoryKey = "RONDELLE_FROSTED"

	KeyOval     CategoryKey = "OVAL"
	KeyCube     CategoryKey = "CUBE"
	KeyStar     CategoryKey = "STAR"
	KeyHeart    CategoryKey = "HEART"
	KeyTeardrop CategoryKey = "TEARDROP"
	KeyNugget   CategoryKey = "NUGGET"
	KeyChips    CategoryKey = "CHIPS"
	KeyCoin     CategoryKey = "COIN"
	KeyTube     CategoryKey = "TUBE"
	KeyBicone   CategoryKey = "BICONE"

	KeyFreeform CategoryKey = "FREEFORM"
)

var titleCaser = cases.Title(language.English)

// DisplayTitle returns the collection title form of the key:
// ROUND_POLISHED -> "Round Polished".
func (k CategoryKey) DisplayTitle() string {
	words := strings.Split(strings.ToLower(string(k)), "_")
	return titleCaser.String(strings.Join(words, " "))
}

// HandleForm returns the collection handle form of the key:
// ROUND_POLISHED -> "round-polished".
func (k CategoryKey) HandleForm() string {
	return strings.ReplaceAll(strings.ToLower(string(k)), "_", "-")
}
