package mysql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-account/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        []byte          `gorm:"primaryKey;type:binary(16)"`
	UserID    int64           `gorm:"index"`
	UserName  string          `gorm:"size:255"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4)"`
	UpdatedAt int64           `gorm:"autoUpdateTime:milli"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	RefID     []byte          `gorm:"column:ref_id;type:binary(16);uniqueIndex"` // 對應 domain.TransactionID
	AccountID []byte          `gorm:"type:binary(16);index"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4)"`
	Type      uint8
	CreatedAt int64 `gorm:"autoCreateTime:milli"`
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

type MySQLLedger struct {
	client *mysql.Client
	logger *slog.Logger
}

func NewMySQLLedger(client *mysql.Client, logger *slog.Logger) *MySQLLedger {
	return &MySQLLedger{
		client: client,
		logger: logger,
	}
}

// Migrate 建立或更新資料表
func (ledger *MySQLLedger) Migrate(ctx context.Context) error {
	return ledger.client.DB().WithContext(ctx).AutoMigrate(&sqlAccount{}, &sqlTransaction{})
}

func (ledger *MySQLLedger) CreateAccount(ctx context.Context, account *domain.Account) error {
	user := account.User()
	row := sqlAccount{
		ID:       account.ID[:],
		UserID:   user.ID,
		UserName: user.Name,
		Balance:  account.Balance(),
	}
	err := ledger.client.DB().WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAccountAlreadyExists
	}
	return err
}

func (ledger *MySQLLedger) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var row sqlAccount
	if err := ledger.client.DB().WithContext(ctx).Where("id = ?", accountID[:]).First(&row).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toDomain(&row)
}

// GetAccountBalance 取得帳戶餘額
func (ledger *MySQLLedger) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := ledger.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance(), nil
}

func (ledger *MySQLLedger) LoadAllAccounts(ctx context.Context) (map[uuid.UUID]*domain.Account, error) {
	var rows []sqlAccount
	if err := ledger.client.DB().WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make(map[uuid.UUID]*domain.Account, len(rows))
	for i := range rows {
		account, err := toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		accounts[account.ID] = account
	}
	return accounts, nil
}

// PostTransaction 在 DB Transaction 內以悲觀鎖鎖定帳戶，套用存提款後寫回
//
// 先鎖帳戶列再查 ref_id，同一個帳戶的重複請求會在鎖上排隊，
// 第二個請求一定看得到第一個已提交的交易紀錄。
//
// 回傳:
//
//	bool: 餘額是否異動 (重複的交易視為已處理)
//	decimal.Decimal: 同一個 DB Transaction 內的餘額
//	error: 處理錯誤
func (ledger *MySQLLedger) PostTransaction(ctx context.Context, tran *domain.Transaction) (bool, decimal.Decimal, error) {
	applied := false
	balance := decimal.Zero
	err := ledger.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sqlAccount
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", tran.AccountID[:]).
			First(&row).Error; err != nil {
			return mapNotFound(err)
		}
		account, err := toDomain(&row)
		if err != nil {
			return err
		}
		balance = account.Balance()

		// 檢查是否已有這筆交易記錄
		var existing sqlTransaction
		err = tx.Where("ref_id = ?", tran.TransactionID[:]).First(&existing).Error
		if err == nil {
			applied = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("select transaction: %w", err)
		}

		applied, err = usecase.ApplyTransaction(ledger.logger, account, tran)
		if err != nil || !applied {
			return err
		}

		if err := tx.Model(&sqlAccount{}).
			Where("id = ?", tran.AccountID[:]).
			Update("balance", account.Balance()).Error; err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		if err := tx.Create(&sqlTransaction{
			RefID:     tran.TransactionID[:],
			AccountID: tran.AccountID[:],
			Amount:    tran.Amount,
			Type:      uint8(tran.Type),
		}).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		balance = account.Balance()
		return nil
	})
	if err != nil {
		return false, decimal.Zero, err
	}
	return applied, balance, nil
}

func toDomain(row *sqlAccount) (*domain.Account, error) {
	id, err := uuid.FromBytes(row.ID)
	if err != nil {
		return nil, fmt.Errorf("account id: %w", err)
	}
	return domain.NewAccount(
		domain.User{ID: row.UserID, Name: row.UserName},
		domain.WithID(id),
		domain.WithInitialBalance(row.Balance),
	), nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrAccountNotFound
	}
	return err
}

var _ usecase.AccountRepository = (*MySQLLedger)(nil)
