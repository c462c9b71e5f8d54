package settlement

import (
	"github.com/tallyhq/tally/internal/money"
)

// SettleRequest represents the request to apply a payment against
// outstanding debts. AmountCap is optional: when omitted, everything owed
// to the payee is settled.
type SettleRequest struct {
	PayeeID   int64        `json:"payee_id" validate:"required"`
	AmountCap *money.Money `json:"amount_cap,omitempty"`
}
