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

// requestBufferSize 輸送帶緩衝大小
const requestBufferSize = 1000

// ledgerRequest 送進核心迴圈的請求，run 只會在核心 goroutine 內執行
// done 關閉代表 run 已經跑完，呼叫端可以讀取 run 寫入的結果
type ledgerRequest struct {
	run  func()
	done chan struct{}
}

// LMAXLedger 單一寫入者帳本 (Level 2)
//
// 所有讀寫都經由 channel 排隊，由同一個 goroutine 依序處理，state 不需要任何鎖。
// 使用前必須先呼叫 Start。
type LMAXLedger struct {
	state *ledgerState
	// 輸送帶 負責接收請求
	requests chan *ledgerRequest
	// 核心迴圈結束後關閉
	stopped   chan struct{}
	startOnce sync.Once
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例
//
// 參數:
//
//	accounts: 初始帳戶資料 Map (可為 nil)
//	w: Write-Ahead Log 實例 (可為 nil)
//	logger: 存提款呼叫記錄用
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewLMAXLedger(accounts map[uuid.UUID]*domain.Account, w *wal.WAL, logger *slog.Logger) (*LMAXLedger, error) {
	// 在啟動前先恢復資料
	state, err := newLedgerState(accounts, w, logger)
	if err != nil {
		return nil, err
	}
	return &LMAXLedger{
		state:    state,
		requests: make(chan *ledgerRequest, requestBufferSize),
		stopped:  make(chan struct{}),
	}, nil
}

// Start 啟動核心引擎 (非同步)，ctx 結束時處理完剩下的請求後停止
func (l *LMAXLedger) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

// Stopped 回傳核心迴圈結束的通知
func (l *LMAXLedger) Stopped() <-chan struct{} {
	return l.stopped
}

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的請求處理完
			l.drain()
			return
		case req := <-l.requests:
			l.process(req)
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case req := <-l.requests:
			l.process(req)
		default:
			return
		}
	}
}

func (l *LMAXLedger) process(req *ledgerRequest) {
	req.run()
	close(req.done)
}

// submit 把 fn 放上輸送帶並等待核心迴圈執行完畢
//
// PostTransaction(等待) -> Channel -> Run Loop (核心) -> WAL -> Map Update -> done -> PostTransaction(收到結果)
func (l *LMAXLedger) submit(ctx context.Context, fn func()) error {
	req := &ledgerRequest{run: fn, done: make(chan struct{})}
	select {
	case l.requests <- req:
	case <-l.stopped:
		return domain.ErrLedgerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-l.stopped:
		// 迴圈結束前 drain 過的請求一定已經 done
		select {
		case <-req.done:
			return nil
		default:
			return domain.ErrLedgerStopped
		}
	}
}

// CreateAccount 登記新帳戶
func (l *LMAXLedger) CreateAccount(ctx context.Context, account *domain.Account) error {
	var err error
	if serr := l.submit(ctx, func() { err = l.state.createAccount(ctx, account) }); serr != nil {
		return serr
	}
	return err
}

// GetAccount 取得帳戶快照
func (l *LMAXLedger) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var (
		account *domain.Account
		err     error
	)
	if serr := l.submit(ctx, func() { account, err = l.state.getAccount(accountID) }); serr != nil {
		return nil, serr
	}
	return account, err
}

// GetAccountBalance 取得指定帳戶的當前餘額
func (l *LMAXLedger) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var (
		balance decimal.Decimal
		err     error
	)
	if serr := l.submit(ctx, func() { balance, err = l.state.balance(accountID) }); serr != nil {
		return decimal.Zero, serr
	}
	return balance, err
}

// LoadAllAccounts 回傳所有帳戶的快照
func (l *LMAXLedger) LoadAllAccounts(ctx context.Context) (map[uuid.UUID]*domain.Account, error) {
	var accounts map[uuid.UUID]*domain.Account
	if err := l.submit(ctx, func() { accounts = l.state.snapshot() }); err != nil {
		return nil, err
	}
	return accounts, nil
}

// PostTransaction 接收交易請求，在核心迴圈內套用
//
// 回傳:
//
//	bool: 餘額是否異動 (提款餘額不足為 false)
//	decimal.Decimal: 操作後餘額
//	error: 處理錯誤
func (l *LMAXLedger) PostTransaction(ctx context.Context, tran *domain.Transaction) (bool, decimal.Decimal, error) {
	var (
		applied bool
		balance decimal.Decimal
		err     error
	)
	if serr := l.submit(ctx, func() { applied, balance, err = l.state.postTransaction(ctx, tran) }); serr != nil {
		return false, decimal.Zero, serr
	}
	return applied, balance, err
}

var _ usecase.AccountRepository = (*LMAXLedger)(nil)
