package merchandising

import (
	"github.com/curator/backend/internal/domain/shared"
)

// Event types emitted by webhook intake
const (
	EventTypeProductUpserted = "product.upserted"
	EventTypeProductDeleted  = "product.deleted"
)

const subjectTypeProduct = "product"

// ProductUpserted is published when a product create or update webhook has
// been verified and decoded. The event ID is the storefront delivery ID
// when one was sent, so redeliveries dedupe onto the same event.
type ProductUpserted struct {
	shared.BaseDomainEvent
	Product Product `json:"product"`
}

// NewProductUpserted builds the event for a verified upsert delivery
func NewProductUpserted(product Product, deliveryID string) *ProductUpserted {
	return &ProductUpserted{
		BaseDomainEvent: shared.NewDeliveredDomainEvent(
			EventTypeProductUpserted, subjectTypeProduct, product.IDString(), deliveryID),
		Product: product,
	}
}

// ProductDeleted is published when a product deletion webhook has been
// verified. There is no membership-removal API at the storefront, so
// handling is acknowledge-and-log.
type ProductDeleted struct {
	shared.BaseDomainEvent
	ProductID int64 `json:"product_id"`
}

// NewProductDeleted builds the event for a verified deletion delivery
func NewProductDeleted(product Product, deliveryID string) *ProductDeleted {
	return &ProductDeleted{
		BaseDomainEvent: shared.NewDeliveredDomainEvent(
			EventTypeProductDeleted, subjectTypeProduct, product.IDString(), deliveryID),
		ProductID: product.ID,
	}
}

// Interface assertions
var (
	_ shared.DomainEvent = (*ProductUpserted)(nil)
	_ shared.DomainEvent = (*ProductDeleted)(nil)
)
