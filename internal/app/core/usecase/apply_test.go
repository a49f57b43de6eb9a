package usecase

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
)

func TestApplyTransaction(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name    string
		txType  domain.TransactionType
		amount  int64
		wantOK  bool
		wantErr error
		want    int64
	}{
		{"deposit", domain.TransactionTypeDeposit, 5, true, nil, 15},
		{"deposit zero", domain.TransactionTypeDeposit, 0, false, domain.ErrAmountMustBePositive, 10},
		{"withdraw", domain.TransactionTypeWithdraw, 10, true, nil, 0},
		{"withdraw too much", domain.TransactionTypeWithdraw, 11, false, nil, 10},
		{"unknown", domain.TransactionType(0), 1, false, domain.ErrUnknownTransactionType, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := domain.NewAccount(domain.User{ID: 1, Name: "A"}, domain.WithInitialBalance(decimal.NewFromInt(10)))
			tran := domain.NewTransaction(acc.ID, tt.txType, decimal.NewFromInt(tt.amount))
			ok, err := ApplyTransaction(logger, acc, tran)
			if ok != tt.wantOK || !errors.Is(err, tt.wantErr) {
				t.Fatalf("ok=%v err=%v want ok=%v err=%v", ok, err, tt.wantOK, tt.wantErr)
			}
			if !acc.Balance().Equal(decimal.NewFromInt(tt.want)) {
				t.Fatalf("balance=%s want=%d", acc.Balance(), tt.want)
			}
		})
	}
}
