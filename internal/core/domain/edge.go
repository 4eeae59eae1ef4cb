package domain

import "time"

// EdgeType is the kind of relationship an edge asserts between two events.
type EdgeType string

const (
	// EdgeComposedOf asserts value decomposition: the parent event's amount equals
	// the sum of its children's signed amounts within tolerance (e.g. a payout
	// netting several charges minus fees).
	EdgeComposedOf EdgeType = "COMPOSED_OF"
	// EdgeSettles asserts timing/value correspondence between a payout and the bank
	// deposit that settles it.
	EdgeSettles EdgeType = "SETTLES"
	// EdgePaidBy links an invoice to the payment or charge that pays it.
	EdgePaidBy EdgeType = "PAID_BY"
)

// EdgeSource records whether the relationship was declared by an external system or
// inferred by the matching engine.
type EdgeSource string

const (
	EdgeSystemDeclared EdgeSource = "system_declared"
	EdgeInferred       EdgeSource = "inferred"
)

// Edge is a typed, confidence-scored link between two events in the identity graph.
// Edge identity is (FromEventID, ToEventID, Type): re-adding an identical edge is a
// no-op, not a duplicate.
type Edge struct {
	EdgeID      string     `json:"edgeID"`
	FromEventID string     `json:"fromEventID"`
	ToEventID   string     `json:"toEventID"`
	Type        EdgeType   `json:"type"`
	Confidence  float64    `json:"confidence"`
	Source      EdgeSource `json:"source"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy"`
}
