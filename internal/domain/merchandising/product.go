package merchandising

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ProductVariant is one purchasable variant of a storefront product.
// Variants are carried through webhook payloads and listing responses;
// the classifier never reads them, but the readiness check does.
type ProductVariant struct {
	// ID is the storefront-assigned variant identifier
	ID int64 `json:"id"`
	// SKU is assigned asynchronously by an external system after product
	// creation; it is empty until that system has caught up
	SKU string `json:"sku"`
	// Price is the variant price in the store currency
	Price decimal.Decimal `json:"price"`
}

// Product is a transient storefront product. It is provided per invocation
// by a webhook payload or a listing response and never persisted locally.
type Product struct {
	// ID is the storefront-assigned product identifier
	ID int64 `json:"id"`
	// Title is the free-text product title the classifier parses
	Title string `json:"title"`
	// Variants are the product's purchasable variants
	Variants []ProductVariant `json:"variants"`
}

// IDString returns the product ID in its string form, used for event
// subjects and log fields.
func (p Product) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

// Ready reports whether every variant carries a SKU. Products with no
// variants are considered ready; there is nothing to wait for.
func (p Product) Ready() bool {
	for _, v := range p.Variants {
		if v.SKU == "" {
			return false
		}
	}
	return true
}
