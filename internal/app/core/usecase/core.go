package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/pkg/async"
)

const (
	// DefaultFetchUserDelay 模擬取得使用者的延遲
	DefaultFetchUserDelay = time.Second
	// DefaultStatusDelay 模擬查詢狀態的延遲
	DefaultStatusDelay = 200 * time.Millisecond

	// PlaceholderUserName FetchUser 固定回傳的名稱
	PlaceholderUserName = "Jane Doe"
	// StatusActive GetStatus 固定回傳的狀態
	StatusActive = "active"
)

// CoreUseCase 是核心業務邏輯層
type CoreUseCase struct {
	repo           AccountRepository
	logger         *slog.Logger
	fetchUserDelay time.Duration
	statusDelay    time.Duration
}

// Option 定義 CoreUseCase 的可選設定
type Option func(*CoreUseCase)

// WithLogger 設定 logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *CoreUseCase) {
		c.logger = logger
	}
}

// WithDelays 設定 FetchUser 與 GetStatus 的模擬延遲
func WithDelays(fetchUser, status time.Duration) Option {
	return func(c *CoreUseCase) {
		c.fetchUserDelay = fetchUser
		c.statusDelay = status
	}
}

func NewCoreUseCase(repo AccountRepository, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		repo:           repo,
		logger:         slog.Default(),
		fetchUserDelay: DefaultFetchUserDelay,
		statusDelay:    DefaultStatusDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateAccount 建立帳戶並登記到儲存層
//
// 參數:
//
//	ctx: 上下文
//	user: 帳戶擁有者 (不做檢查)
//	opts: 帳戶設定，如 domain.WithInitialBalance
//
// 回傳:
//
//	*domain.Account: 新帳戶的快照
//	error: 初始餘額超過 CurrencyScale 或儲存錯誤
func (c *CoreUseCase) CreateAccount(ctx context.Context, user domain.User, opts ...domain.AccountOption) (*domain.Account, error) {
	account := domain.CreateAccount(user, opts...)
	if err := domain.CheckScale(account.Balance()); err != nil {
		return nil, err
	}
	if err := c.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "account created",
		slog.String("account_id", account.ID.String()),
		slog.Int64("user_id", user.ID),
		slog.String("balance", account.Balance().String()),
	)
	return account.Clone(), nil
}

// Deposit 存款，回傳存款後餘額
// 小數位數超過 domain.CurrencyScale 的金額在進入帳本前就拒絕，避免儲存層四捨五入。
func (c *CoreUseCase) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := domain.CheckScale(amount); err != nil {
		return decimal.Zero, err
	}
	tran := domain.NewTransaction(accountID, domain.TransactionTypeDeposit, amount)
	_, balance, err := c.repo.PostTransaction(ctx, tran)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Withdraw 提款
//
// 回傳:
//
//	bool: 餘額不足時為 false (不是錯誤)
//	decimal.Decimal: 操作後餘額
//	error: 帳戶不存在、金額精度超過或儲存錯誤
func (c *CoreUseCase) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (bool, decimal.Decimal, error) {
	if err := domain.CheckScale(amount); err != nil {
		return false, decimal.Zero, err
	}
	tran := domain.NewTransaction(accountID, domain.TransactionTypeWithdraw, amount)
	ok, balance, err := c.repo.PostTransaction(ctx, tran)
	if err != nil {
		return false, decimal.Zero, err
	}
	return ok, balance, nil
}

// GetBalance 取得帳戶餘額
func (c *CoreUseCase) GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return c.repo.GetAccountBalance(ctx, accountID)
}

// SyncWithBank 模擬帳戶與銀行同步
func (c *CoreUseCase) SyncWithBank(ctx context.Context, accountID uuid.UUID) (string, error) {
	account, err := c.repo.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.SyncWithBank().Await(ctx)
}

// FetchUser 模擬遠端取得使用者，延遲後回傳固定名稱
func (c *CoreUseCase) FetchUser(ctx context.Context, id int64) (domain.User, error) {
	return async.After(c.fetchUserDelay, func() (domain.User, error) {
		return domain.User{ID: id, Name: PlaceholderUserName}, nil
	}).Await(ctx)
}

// GetStatus 延遲後回傳 "active"
func (c *CoreUseCase) GetStatus(ctx context.Context) (string, error) {
	return async.After(c.statusDelay, func() (string, error) {
		return StatusActive, nil
	}).Await(ctx)
}
