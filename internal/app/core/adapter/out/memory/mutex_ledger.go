package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-account/pkg/wal"
)

// MutexLedger 是一個使用 Mutex 保護的記憶體帳本 (Level 1)
type MutexLedger struct {
	state *ledgerState
	mu    sync.RWMutex
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	accounts: 初始帳戶資料 Map (可為 nil)
//	w: Write-Ahead Log 實例 (可為 nil)
//	logger: 存提款呼叫記錄用
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewMutexLedger(accounts map[uuid.UUID]*domain.Account, w *wal.WAL, logger *slog.Logger) (*MutexLedger, error) {
	state, err := newLedgerState(accounts, w, logger)
	if err != nil {
		return nil, err
	}
	return &MutexLedger{state: state}, nil
}

// CreateAccount 登記新帳戶
func (m *MutexLedger) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createAccount(ctx, account)
}

// GetAccount 取得帳戶快照
func (m *MutexLedger) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getAccount(accountID)
}

// GetAccountBalance 取得指定帳戶的當前餘額
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//
// 回傳:
//
//	decimal.Decimal: 帳戶餘額
//	error: 查詢錯誤 (如帳戶不存在)
func (m *MutexLedger) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.balance(accountID)
}

// LoadAllAccounts 回傳所有帳戶的快照
func (m *MutexLedger) LoadAllAccounts(ctx context.Context) (map[uuid.UUID]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.snapshot(), nil
}

// PostTransaction 處理存提款請求 (Level 1: Mutex Lock)
//
// 參數:
//
//	ctx: 上下文
//	tran: 交易請求物件
//
// 回傳:
//
//	bool: 餘額是否異動 (提款餘額不足為 false)
//	decimal.Decimal: 操作後餘額
//	error: 處理錯誤
func (m *MutexLedger) PostTransaction(ctx context.Context, tran *domain.Transaction) (bool, decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.postTransaction(ctx, tran)
}

var _ usecase.AccountRepository = (*MutexLedger)(nil)
