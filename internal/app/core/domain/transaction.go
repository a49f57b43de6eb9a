package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyScale 金額精度：小數點後 4 位，與 DB 欄位 decimal(20,4) 一致
const CurrencyScale int32 = 4

// CheckScale 金額的小數位數超過 CurrencyScale 時回傳 ErrAmountTooPrecise
// 以數值判斷，"1.50000" 這種尾端多餘的 0 不算超過。
func CheckScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(CurrencyScale)) {
		return ErrAmountTooPrecise
	}
	return nil
}

// TransactionType 交易類型
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = 1
	// 提款
	TransactionTypeWithdraw TransactionType = 2
)

// String 回傳交易類型名稱，作為 log 裡的方法名稱
func (t TransactionType) String() string {
	switch t {
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeWithdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}

// Transaction 一筆存提款流水
type Transaction struct {
	// Sequence: 由帳本分配的順序號 (1, 2, 3...)，WAL 重放時確保順序一致
	Sequence uint64 `json:"sequence"`
	// AccountID: 異動的帳戶
	AccountID uuid.UUID `json:"account_id"`
	// Amount: 金額
	Amount decimal.Decimal `json:"amount"`
	// CreatedAt: 交易時間 (unix milli)
	CreatedAt int64 `json:"created_at"`
	// TransactionID: 外部追蹤號，用於冪等
	TransactionID uuid.UUID       `json:"transaction_id"`
	Type          TransactionType `json:"type"`
}

// NewTransaction 建立一筆帶有新 TransactionID 的交易
func NewTransaction(accountID uuid.UUID, txType TransactionType, amount decimal.Decimal) *Transaction {
	return &Transaction{
		TransactionID: uuid.New(),
		AccountID:     accountID,
		Type:          txType,
		Amount:        amount,
	}
}
