package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNewAccountDefaultsToZero(t *testing.T) {
	a := CreateAccount(User{ID: 2, Name: "B"})
	if !a.Balance().IsZero() {
		t.Fatalf("balance=%s want=0", a.Balance())
	}
	if a.ID == uuid.Nil {
		t.Fatal("account id should be assigned")
	}
	if a.User().Name != "B" {
		t.Fatalf("user=%+v", a.User())
	}
}

func TestNewAccountOptions(t *testing.T) {
	id := uuid.New()
	a := NewAccount(User{ID: 1, Name: "A"}, WithID(id), WithInitialBalance(d(100)))
	if a.ID != id {
		t.Fatalf("id=%s want=%s", a.ID, id)
	}
	if !a.Balance().Equal(d(100)) {
		t.Fatalf("balance=%s want=100", a.Balance())
	}

	// 建構時不做任何檢查
	neg := NewAccount(User{}, WithInitialBalance(d(-5)))
	if !neg.Balance().Equal(d(-5)) {
		t.Fatalf("balance=%s want=-5", neg.Balance())
	}
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
		want    decimal.Decimal
	}{
		{"positive", d(50), nil, d(150)},
		{"fraction", decimal.RequireFromString("0.0001"), nil, decimal.RequireFromString("100.0001")},
		{"zero", d(0), ErrAmountMustBePositive, d(100)},
		{"negative", d(-10), ErrAmountMustBePositive, d(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccount(User{ID: 1, Name: "A"}, WithInitialBalance(d(100)))
			err := a.Deposit(tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
			if !a.Balance().Equal(tt.want) {
				t.Fatalf("balance=%s want=%s", a.Balance(), tt.want)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		wantOK bool
		want   decimal.Decimal
	}{
		{"zero", d(0), true, d(100)},
		{"partial", d(30), true, d(70)},
		{"exact", d(100), true, d(0)},
		{"insufficient", d(101), false, d(100)},
		{"insufficient fraction", decimal.RequireFromString("100.01"), false, d(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccount(User{ID: 1, Name: "A"}, WithInitialBalance(d(100)))
			if ok := a.Withdraw(tt.amount); ok != tt.wantOK {
				t.Fatalf("ok=%v want=%v", ok, tt.wantOK)
			}
			if !a.Balance().Equal(tt.want) {
				t.Fatalf("balance=%s want=%s", a.Balance(), tt.want)
			}
			if a.Balance().IsNegative() {
				t.Fatal("balance went negative")
			}
		})
	}
}

func TestAccountScenario(t *testing.T) {
	a := NewAccount(User{ID: 1, Name: "A"}, WithInitialBalance(d(100)))

	if err := a.Deposit(d(50)); err != nil {
		t.Fatal(err)
	}
	if !a.Balance().Equal(d(150)) {
		t.Fatalf("balance=%s want=150", a.Balance())
	}
	if a.Withdraw(d(200)) {
		t.Fatal("withdraw 200 should fail")
	}
	if !a.Balance().Equal(d(150)) {
		t.Fatalf("balance=%s want=150", a.Balance())
	}
	if !a.Withdraw(d(150)) {
		t.Fatal("withdraw 150 should succeed")
	}
	if !a.Balance().IsZero() {
		t.Fatalf("balance=%s want=0", a.Balance())
	}
}

func TestSyncWithBank(t *testing.T) {
	a := NewAccount(User{ID: 1, Name: "Jane"})
	start := time.Now()
	msg, err := a.SyncWithBank().Await(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Synced for Jane" {
		t.Fatalf("msg=%q", msg)
	}
	if elapsed := time.Since(start); elapsed < BankSyncDelay {
		t.Fatalf("resolved after %v, want >= %v", elapsed, BankSyncDelay)
	}
}

func TestCloneDoesNotShareBalance(t *testing.T) {
	a := NewAccount(User{ID: 1, Name: "A"}, WithInitialBalance(d(10)))
	c := a.Clone()
	if err := c.Deposit(d(5)); err != nil {
		t.Fatal(err)
	}
	if !a.Balance().Equal(d(10)) {
		t.Fatalf("original balance=%s want=10", a.Balance())
	}
	if c.ID != a.ID {
		t.Fatal("clone should keep id")
	}
}
