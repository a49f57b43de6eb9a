package domain

import "errors"

var (
	// ErrAmountMustBePositive 金額必須為正數 (InvalidArgument)
	ErrAmountMustBePositive = errors.New("amount must be positive")

	// ErrAmountTooPrecise 金額小數位數超過 CurrencyScale (InvalidArgument)
	ErrAmountTooPrecise = errors.New("amount has more than 4 decimal places")

	// ErrInvalidUser 使用者資料不合法 (ID <= 0 或名稱為空)
	ErrInvalidUser = errors.New("invalid user")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists 帳戶已存在
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrWALWriteFailed 寫入 WAL 失敗
	ErrWALWriteFailed = errors.New("wal write failed")

	// ErrLedgerStopped 帳本核心引擎已停止
	ErrLedgerStopped = errors.New("ledger stopped")

	// ErrUnknownTransactionType 無法辨識的交易類型
	ErrUnknownTransactionType = errors.New("unknown transaction type")
)
