package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-account/pkg/async"
)

// BankSyncDelay 模擬與銀行同步的延遲
const BankSyncDelay = 500 * time.Millisecond

// Account 帳戶
//
// balance 只能透過 Deposit / Withdraw 變動，且 Withdraw 不會讓餘額變成負數。
// Account 本身不加鎖，同一個實例只應由單一呼叫端依序操作。
type Account struct {
	ID      uuid.UUID
	user    User
	balance decimal.Decimal
}

// AccountOption 定義 NewAccount 的可選設定
type AccountOption func(*Account)

// WithInitialBalance 設定初始餘額 (預設 0)
func WithInitialBalance(balance decimal.Decimal) AccountOption {
	return func(a *Account) {
		a.balance = balance
	}
}

// WithID 指定帳戶 ID，用於從儲存層還原
func WithID(id uuid.UUID) AccountOption {
	return func(a *Account) {
		a.ID = id
	}
}

// NewAccount 建立帳戶，不檢查 user 與初始餘額
func NewAccount(user User, opts ...AccountOption) *Account {
	a := &Account{
		ID:      uuid.New(),
		user:    user,
		balance: decimal.Zero,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateAccount 是 NewAccount 的便利包裝
func CreateAccount(user User, opts ...AccountOption) *Account {
	return NewAccount(user, opts...)
}

// User 回傳帳戶擁有者
func (a *Account) User() User {
	return a.user
}

// Balance 回傳目前餘額
func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// Deposit 存款
//
// 參數:
//
//	amount: 存款金額，必須 > 0
//
// 回傳:
//
//	error: amount <= 0 時回傳 ErrAmountMustBePositive，餘額不變
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	a.balance = a.balance.Add(amount)
	return nil
}

// Withdraw 提款
//
// 餘額不足是正常結果而非錯誤：回傳 false，餘額不變。
func (a *Account) Withdraw(amount decimal.Decimal) bool {
	if amount.GreaterThan(a.balance) {
		return false
	}
	a.balance = a.balance.Sub(amount)
	return true
}

// SyncWithBank 模擬與銀行同步，BankSyncDelay 之後回傳確認訊息
func (a *Account) SyncWithBank() *async.Future[string] {
	name := a.user.Name
	return async.After(BankSyncDelay, func() (string, error) {
		return fmt.Sprintf("Synced for %s", name), nil
	})
}

// Clone 複製一份帳戶，讓儲存層可以把快照交給外部而不共用可變狀態
func (a *Account) Clone() *Account {
	c := *a
	return &c
}
