package usecase

import (
	"log/slog"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/pkg/wrap"
)

// ApplyTransaction 把一筆交易套用到帳戶上，存提款都經過 wrap.Logged 記錄
//
// 參數:
//
//	logger: 記錄 "calling method" 的 logger
//	account: 被異動的帳戶 (會被原地修改)
//	tran: 交易
//
// 回傳:
//
//	bool: 是否真的異動了餘額 (提款餘額不足為 false)
//	error: 存款金額不合法或未知交易類型
func ApplyTransaction(logger *slog.Logger, account *domain.Account, tran *domain.Transaction) (bool, error) {
	switch tran.Type {
	case domain.TransactionTypeDeposit:
		deposit := wrap.Logged(logger, tran.Type.String(), account.Deposit)
		if err := deposit(tran.Amount); err != nil {
			return false, err
		}
		return true, nil
	case domain.TransactionTypeWithdraw:
		withdraw := wrap.Logged(logger, tran.Type.String(), account.Withdraw)
		return withdraw(tran.Amount), nil
	default:
		return false, domain.ErrUnknownTransactionType
	}
}
