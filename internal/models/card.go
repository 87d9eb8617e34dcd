package models

// Card types.
const (
	CardTypeCredit = "CREDIT"
	CardTypeDebit  = "DEBIT"
)

// Card statuses. The only transition is PENDING -> ACTIVATED.
const (
	CardStatusPending   = "PENDING"
	CardStatusActivated = "ACTIVATED"
)

// Card represents an issued payment instrument
type Card struct {
	UUID        string `json:"uuid"`
	UserID      string `json:"user_id"`
	Type        string `json:"type"`   // CREDIT or DEBIT
	Status      string `json:"status"` // PENDING or ACTIVATED
	Balance     int64  `json:"balance"`
	Limit       int64  `json:"limit"`        // CREDIT only
	UsedBalance int64  `json:"used_balance"` // CREDIT only
	Score       int    `json:"score"`        // CREDIT only
	CreatedAt   string `json:"created_at"`
}
