package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
)

// AccountRepository 是帳戶儲存的介面
type AccountRepository interface {
	// CreateAccount 登記新帳戶，ID 重複時回傳 ErrAccountAlreadyExists
	CreateAccount(ctx context.Context, account *domain.Account) error
	// GetAccount 取得帳戶快照
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	// GetAccountBalance 取得帳戶餘額
	GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	// PostTransaction 依 tran.Type 執行存款或提款，並回傳同一把鎖內讀到的餘額
	// 存款金額不合法回傳 ErrAmountMustBePositive；提款餘額不足回傳 (false, 原餘額, nil)
	// 已處理過的 TransactionID 回傳 (true, 目前餘額, nil)，不重複異動
	PostTransaction(ctx context.Context, tran *domain.Transaction) (bool, decimal.Decimal, error)
	// LoadAllAccounts 載入所有帳戶
	LoadAllAccounts(ctx context.Context) (map[uuid.UUID]*domain.Account, error)
}
