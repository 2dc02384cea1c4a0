package merchandising

import "time"

// SyncStatus represents the outcome of a curation pass
type SyncStatus string

const (
	// SyncStatusSuccess indicates every write succeeded
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates some writes failed and were skipped
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed indicates no write succeeded
	SyncStatusFailed SyncStatus = "FAILED"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusSuccess, SyncStatusPartial, SyncStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// WriteFailure records one collection write that exhausted its retries
type WriteFailure struct {
	// CollectionID is the collection the write targeted
	CollectionID CollectionID `json:"collection_id"`
	// Reason is the terminal error message
	Reason string `json:"reason"`
}

// ProductResult is the per-product outcome of classify-and-write
type ProductResult struct {
	// ProductID is the storefront product identifier
	ProductID int64 `json:"product_id"`
	// Matched is the classifier output, in emission order
	Matched []CollectionID `json:"matched"`
	// Written is the number of memberships successfully written
	Written int `json:"written"`
	// Failures lists collections whose write exhausted retries
	Failures []WriteFailure `json:"failures,omitempty"`
}

// Status derives the overall status from the counters. A product with no
// matched collections counts as a success: nothing needed writing.
func (r ProductResult) Status() SyncStatus {
	switch {
	case len(r.Failures) == 0:
		return SyncStatusSuccess
	case r.Written > 0:
		return SyncStatusPartial
	default:
		return SyncStatusFailed
	}
}

// WindowResult is the aggregate outcome of one batch run over a time window
type WindowResult struct {
	// Status is the overall run status
	Status SyncStatus `json:"status"`
	// WindowStart is the inclusive lower bound of the queried window
	WindowStart time.Time `json:"window_start"`
	// WindowEnd is when the window query was issued
	WindowEnd time.Time `json:"window_end"`
	// TotalProducts is the number of products the query returned
	TotalProducts int `json:"total_products"`
	// SucceededProducts is the number of products with no write failures
	SucceededProducts int `json:"succeeded_products"`
	// FailedProducts is the number of products with at least one failure
	FailedProducts int `json:"failed_products"`
	// Products holds the per-product outcomes
	Products []ProductResult `json:"products,omitempty"`
	// CompletedAt is when the run finished
	CompletedAt time.Time `json:"completed_at"`
}

// Finalize fills the counters and overall status from the per-product
// outcomes and stamps the completion time.
func (r *WindowResult) Finalize(now time.Time) {
	r.TotalProducts = len(r.Products)
	r.SucceededProducts = 0
	r.FailedProducts = 0
	for _, p := range r.Products {
		if p.Status() == SyncStatusSuccess {
			r.SucceededProducts++
		} else {
			r.FailedProducts++
		}
	}
	switch {
	case r.FailedProducts == 0:
		r.Status = SyncStatusSuccess
	case r.SucceededProducts > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusFailed
	}
	r.CompletedAt = now
}
