package model

import "time"

type TransactionType string

const (
	TransactionRecharge      TransactionType = "RECHARGE"
	TransactionSessionCharge TransactionType = "SESSION_CHARGE"
	TransactionRefund        TransactionType = "REFUND"
	TransactionAdjustment    TransactionType = "ADJUSTMENT"
)

// Transaction — строка журнала списаний/пополнений. Append-only, никогда не
// мутируется: по ней сверяется баланс участника.
type Transaction struct {
	ID               string          `json:"id"`
	MemberID         string          `json:"member_id"`
	Type             TransactionType `json:"type"`
	Amount           float64         `json:"amount"`        // знак: + пополняет баланс, - списывает
	BalanceAfter     float64         `json:"balance_after"` // снимок баланса после применения
	RelatedSessionID *string         `json:"related_session_id"`
	Method           string          `json:"method"`
	Note             string          `json:"note"`
	CreatedAt        time.Time       `json:"created_at"`
}
