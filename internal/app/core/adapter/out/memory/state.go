package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-account/pkg/wal"
)

const (
	recordKindAccount     = "account"
	recordKindTransaction = "transaction"
)

// walRecord WAL 內的一筆紀錄，開戶與存提款共用同一個檔案以保持順序
type walRecord struct {
	Kind        string              `json:"kind"`
	Account     *accountRecord      `json:"account,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

type accountRecord struct {
	ID      uuid.UUID       `json:"id"`
	User    domain.User     `json:"user"`
	Balance decimal.Decimal `json:"balance"`
}

// ledgerState 記憶體帳本的狀態與核心邏輯，本身不加鎖
//
// MutexLedger 以 RWMutex 保護它，LMAXLedger 只在單一 goroutine 內操作它。
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	processedTransactions: 已處理過的交易，用於冪等
//	sequence: 最後分配的交易順序號
//	wal: Write-Ahead Log，為 nil 時不落盤
type ledgerState struct {
	accounts              map[uuid.UUID]*domain.Account
	processedTransactions map[uuid.UUID]time.Time
	sequence              uint64
	wal                   *wal.WAL
	logger                *slog.Logger
}

// newLedgerState 建立狀態並從 WAL 恢復
//
// 參數:
//
//	accounts: 初始帳戶 (如從 MySQL 載入的快照，可為 nil)
//	w: Write-Ahead Log 實例 (可為 nil)
//	logger: 存提款呼叫記錄用
func newLedgerState(accounts map[uuid.UUID]*domain.Account, w *wal.WAL, logger *slog.Logger) (*ledgerState, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ledgerState{
		accounts:              make(map[uuid.UUID]*domain.Account, len(accounts)),
		processedTransactions: make(map[uuid.UUID]time.Time),
		wal:                   w,
		logger:                logger,
	}
	for id, account := range accounts {
		s.accounts[id] = account.Clone()
	}
	if w != nil {
		if err := s.recoverFromWAL(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// recoverFromWAL 從 WAL 檔案恢復帳本狀態
func (s *ledgerState) recoverFromWAL() error {
	quiet := slog.New(slog.DiscardHandler)
	now := time.Now()
	count := 0

	err := s.wal.Replay(func(raw json.RawMessage) error {
		var rec walRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		count++
		switch rec.Kind {
		case recordKindAccount:
			if rec.Account == nil {
				return fmt.Errorf("wal record %d: missing account", count)
			}
			s.accounts[rec.Account.ID] = domain.NewAccount(rec.Account.User,
				domain.WithID(rec.Account.ID),
				domain.WithInitialBalance(rec.Account.Balance),
			)
		case recordKindTransaction:
			tran := rec.Transaction
			if tran == nil {
				return fmt.Errorf("wal record %d: missing transaction", count)
			}
			account, ok := s.accounts[tran.AccountID]
			if !ok {
				return fmt.Errorf("wal record %d: %w", count, domain.ErrAccountNotFound)
			}
			// WAL 內只有成功過的交易，重放結果必須一致
			applied, err := usecase.ApplyTransaction(quiet, account, tran)
			if err != nil {
				return fmt.Errorf("wal record %d: %w", count, err)
			}
			if !applied {
				return fmt.Errorf("wal record %d: transaction %s no longer applies", count, tran.TransactionID)
			}
			s.processedTransactions[tran.TransactionID] = now
			s.sequence = max(s.sequence, tran.Sequence)
		default:
			return fmt.Errorf("wal record %d: unknown kind %q", count, rec.Kind)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recover from wal: %w", err)
	}
	if count > 0 {
		s.logger.Info("recovered from wal",
			slog.Int("records", count),
			slog.Int("accounts", len(s.accounts)),
		)
	}
	return nil
}

// createAccount 登記新帳戶 (先寫 WAL 再放進 Map)
func (s *ledgerState) createAccount(ctx context.Context, account *domain.Account) error {
	if _, ok := s.accounts[account.ID]; ok {
		return domain.ErrAccountAlreadyExists
	}
	if s.wal != nil {
		rec := walRecord{
			Kind: recordKindAccount,
			Account: &accountRecord{
				ID:      account.ID,
				User:    account.User(),
				Balance: account.Balance(),
			},
		}
		if err := s.wal.Append(rec); err != nil {
			s.logger.ErrorContext(ctx, "wal append failed", slog.Any("error", err))
			return domain.ErrWALWriteFailed
		}
	}
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *ledgerState) getAccount(accountID uuid.UUID) (*domain.Account, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *ledgerState) balance(accountID uuid.UUID) (decimal.Decimal, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}
	return account.Balance(), nil
}

func (s *ledgerState) snapshot() map[uuid.UUID]*domain.Account {
	out := make(map[uuid.UUID]*domain.Account, len(s.accounts))
	for id, account := range s.accounts {
		out[id] = account.Clone()
	}
	return out
}

// postTransaction 執行交易核心邏輯
//
// 先在副本上試算，只有真正異動餘額的交易才寫入 WAL，最後才替換 Map 內的帳戶。
// 回傳的餘額與結果在同一次操作內取得。
func (s *ledgerState) postTransaction(ctx context.Context, tran *domain.Transaction) (bool, decimal.Decimal, error) {
	account, ok := s.accounts[tran.AccountID]
	if !ok {
		return false, decimal.Zero, domain.ErrAccountNotFound
	}
	if _, ok := s.processedTransactions[tran.TransactionID]; ok {
		return true, account.Balance(), nil
	}

	next := account.Clone()
	applied, err := usecase.ApplyTransaction(s.logger, next, tran)
	if err != nil {
		return false, decimal.Zero, err
	}
	if !applied {
		return false, account.Balance(), nil
	}

	tran.Sequence = s.sequence + 1
	tran.CreatedAt = time.Now().UnixMilli()

	// 寫入 WAL (Critical Path)
	if s.wal != nil {
		if err := s.wal.Append(walRecord{Kind: recordKindTransaction, Transaction: tran}); err != nil {
			s.logger.ErrorContext(ctx, "wal append failed", slog.Any("error", err))
			return false, decimal.Zero, domain.ErrWALWriteFailed
		}
	}

	s.sequence = tran.Sequence
	s.accounts[tran.AccountID] = next
	s.processedTransactions[tran.TransactionID] = time.Now()
	return true, next.Balance(), nil
}
