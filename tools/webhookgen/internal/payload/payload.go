// Package payload generates storefront product webhook payloads and signs
// them the way the storefront does, so a locally running curator instance
// accepts the traffic as genuine deliveries.
package payload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/brianvoe/gofakeit/v7"
)

// Webhook headers expected by the curator webhook endpoints. These mirror
// the storefront's delivery headers.
const (
	SignatureHeader = "X-Storefront-Hmac-Sha256"
	EventIDHeader   = "X-Storefront-Event-ID"
	TopicHeader     = "X-Storefront-Topic"
)

// Variant is one sellable variant inside a product payload.
type Variant struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Price string `json:"price"`
}

// Product is the storefront product shape posted to the webhook endpoints.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
}

// Vocabulary the generator composes titles from. The stone and shape lists
// track the curator taxonomy so most generated titles land in at least one
// collection; fillers never match anything.
var (
	stones = []string{
		"Rose Quartz", "Clear Quartz", "Smoky Quartz", "Tiger's Eye",
		"Lapis Lazuli", "Black Onyx", "Amethyst", "Citrine", "Garnet",
		"Peridot", "Moonstone", "Labradorite", "Amazonite", "Aventurine",
		"Malachite", "Turquoise", "Carnelian", "Sodalite", "Hematite",
		"Fluorite", "Obsidian", "Moss Agate", "Agate", "Red Jasper",
		"Jade", "Howlite", "Rhodonite", "Unakite", "Pyrite", "Pink Opal",
		"Freshwater Pearl",
	}

	shapes = []string{
		"Round Polished", "Round Faceted", "Round Frosted",
		"Rondelle Polished", "Rondelle Faceted", "Rondelle Frosted",
		"Oval", "Cube", "Star", "Heart", "Teardrop", "Nugget", "Chip",
		"Coin", "Tube", "Bicone", "Tumbled", "Raw", "Freeform",
	}

	sizes = []string{"4mm", "6mm", "8mm", "10mm", "12mm", "15x20mm"}

	// fillers are titles with no taxonomy words at all, standing in for the
	// storefront's non-gemstone catalog.
	fillers = []string{
		"Digital Gift Card",
		"Jewelry Pliers Set",
		"Nylon Coated Wire Spool",
		"Velvet Storage Pouch",
		"Silver Plated Lobster Clasp Pack",
		"Elastic Stretch Cord Reel",
	}
)

// Generator produces product payloads with sequential IDs and titles drawn
// from the gemstone vocabulary. A fixed seed makes a run reproducible.
type Generator struct {
	faker  *gofakeit.Faker
	nextID atomic.Int64

	// UnmatchedPercent of titles (0-100) are fillers that classify into
	// no collection, exercising the service's skip path.
	UnmatchedPercent int
}

// NewGenerator creates a generator. Seed 0 picks a random seed.
func NewGenerator(seed uint64) *Generator {
	g := &Generator{faker: gofakeit.New(seed)}
	g.nextID.Store(910_000)
	return g
}

// Product returns the next product. Titles are matched gemstone titles
// except for the configured unmatched share.
func (g *Generator) Product() Product {
	id := g.nextID.Add(1)

	title := g.matchedTitle()
	if g.UnmatchedPercent > 0 && g.faker.Number(1, 100) <= g.UnmatchedPercent {
		title = fillers[g.faker.Number(0, len(fillers)-1)]
	}

	variants := make([]Variant, 0, 2)
	for i := 0; i < g.faker.Number(1, 2); i++ {
		variants = append(variants, Variant{
			ID:    id*10 + int64(i),
			SKU:   fmt.Sprintf("SKU-%d-%d", id, i),
			Price: fmt.Sprintf("%.2f", g.faker.Price(2, 80)),
		})
	}

	return Product{ID: id, Title: title, Variants: variants}
}

func (g *Generator) matchedTitle() string {
	stone := stones[g.faker.Number(0, len(stones)-1)]
	shape := shapes[g.faker.Number(0, len(shapes)-1)]
	size := sizes[g.faker.Number(0, len(sizes)-1)]

	// Most listings read "Stone Shape Beads 8mm"; a minority drop the
	// trailing strand word the way loose-stone listings do.
	if g.faker.Number(1, 10) <= 8 {
		return fmt.Sprintf("%s %s Beads %s", stone, shape, size)
	}
	return fmt.Sprintf("%s %s %s", stone, shape, size)
}

// Encode marshals a product into the webhook body.
func Encode(p Product) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding product payload: %w", err)
	}
	return body, nil
}

// Sign computes the base64 HMAC-SHA256 digest the storefront would attach
// to a delivery of body under the shared secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
