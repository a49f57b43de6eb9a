package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-account/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/internal/app/core/usecase"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newCore(t *testing.T, logs *bytes.Buffer) *usecase.CoreUseCase {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(logs, nil))
	repo, err := memory.NewMutexLedger(nil, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	return usecase.NewCoreUseCase(repo,
		usecase.WithLogger(logger),
		usecase.WithDelays(20*time.Millisecond, 10*time.Millisecond),
	)
}

func TestCoreScenario(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	core := newCore(t, &logs)

	acc, err := core.CreateAccount(ctx, domain.User{ID: 1, Name: "A"}, domain.WithInitialBalance(d(100)))
	if err != nil {
		t.Fatal(err)
	}

	bal, err := core.Deposit(ctx, acc.ID, d(50))
	if err != nil || !bal.Equal(d(150)) {
		t.Fatalf("deposit bal=%s err=%v", bal, err)
	}

	ok, bal, err := core.Withdraw(ctx, acc.ID, d(200))
	if err != nil || ok || !bal.Equal(d(150)) {
		t.Fatalf("withdraw 200 ok=%v bal=%s err=%v", ok, bal, err)
	}

	ok, bal, err = core.Withdraw(ctx, acc.ID, d(150))
	if err != nil || !ok || !bal.IsZero() {
		t.Fatalf("withdraw 150 ok=%v bal=%s err=%v", ok, bal, err)
	}

	// 每次存提款都會先經過 logging wrapper
	out := logs.String()
	if strings.Count(out, `msg="calling method"`) != 3 {
		t.Fatalf("expected 3 wrapped calls, logs:\n%s", out)
	}
	if !strings.Contains(out, "method=deposit") || !strings.Contains(out, "method=withdraw") {
		t.Fatalf("missing method names, logs:\n%s", out)
	}
}

func TestCoreCreateAccountDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, &bytes.Buffer{})

	acc, err := core.CreateAccount(ctx, domain.User{ID: 2, Name: "B"})
	if err != nil {
		t.Fatal(err)
	}
	bal, err := core.GetBalance(ctx, acc.ID)
	if err != nil || !bal.IsZero() {
		t.Fatalf("bal=%s err=%v", bal, err)
	}
}

func TestCoreDepositRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, &bytes.Buffer{})
	acc, _ := core.CreateAccount(ctx, domain.User{ID: 1, Name: "A"}, domain.WithInitialBalance(d(10)))

	for _, amount := range []decimal.Decimal{d(0), d(-5)} {
		if _, err := core.Deposit(ctx, acc.ID, amount); !errors.Is(err, domain.ErrAmountMustBePositive) {
			t.Fatalf("amount=%s want ErrAmountMustBePositive, got %v", amount, err)
		}
	}
	if bal, _ := core.GetBalance(ctx, acc.ID); !bal.Equal(d(10)) {
		t.Fatalf("balance changed: %s", bal)
	}
}

func TestCoreUnknownAccount(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, &bytes.Buffer{})
	id := uuid.New()

	if _, err := core.Deposit(ctx, id, d(1)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("deposit: %v", err)
	}
	if _, _, err := core.Withdraw(ctx, id, d(1)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := core.SyncWithBank(ctx, id); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("sync: %v", err)
	}
}

func TestCoreSyncWithBank(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, &bytes.Buffer{})
	acc, _ := core.CreateAccount(ctx, domain.User{ID: 1, Name: "Jane"})

	msg, err := core.SyncWithBank(ctx, acc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Synced for Jane" {
		t.Fatalf("msg=%q", msg)
	}
}

func TestCoreFetchUserAndStatus(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, &bytes.Buffer{})

	u, err := core.FetchUser(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 7 || u.Name != usecase.PlaceholderUserName {
		t.Fatalf("user=%+v", u)
	}

	status, err := core.GetStatus(ctx)
	if err != nil || status != "active" {
		t.Fatalf("status=%q err=%v", status, err)
	}
}

func TestCoreFetchUserStopsWaitingOnCancel(t *testing.T) {
	core := usecase.NewCoreUseCase(nil) // 預設延遲 1 秒
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := core.FetchUser(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", err)
	}
}

func TestCoreRejectsAmountsBeyondCurrencyScale(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, &bytes.Buffer{})
	acc, _ := core.CreateAccount(ctx, domain.User{ID: 1, Name: "A"}, domain.WithInitialBalance(d(10)))
	tooPrecise := decimal.RequireFromString("0.00001")

	if _, err := core.Deposit(ctx, acc.ID, tooPrecise); !errors.Is(err, domain.ErrAmountTooPrecise) {
		t.Fatalf("deposit: want ErrAmountTooPrecise, got %v", err)
	}
	if _, _, err := core.Withdraw(ctx, acc.ID, tooPrecise); !errors.Is(err, domain.ErrAmountTooPrecise) {
		t.Fatalf("withdraw: want ErrAmountTooPrecise, got %v", err)
	}
	if _, err := core.CreateAccount(ctx, domain.User{ID: 2, Name: "B"}, domain.WithInitialBalance(tooPrecise)); !errors.Is(err, domain.ErrAmountTooPrecise) {
		t.Fatalf("create: want ErrAmountTooPrecise, got %v", err)
	}
	if bal, _ := core.GetBalance(ctx, acc.ID); !bal.Equal(d(10)) {
		t.Fatalf("balance changed: %s", bal)
	}

	// 4 位小數以內照常存入
	bal, err := core.Deposit(ctx, acc.ID, decimal.RequireFromString("0.0001"))
	if err != nil || !bal.Equal(decimal.RequireFromString("10.0001")) {
		t.Fatalf("bal=%s err=%v", bal, err)
	}
}

// staleBalanceRepo 的 GetAccountBalance 永遠回傳別人改過的餘額，
// 用來確認 Deposit / Withdraw 只採用 PostTransaction 回傳的餘額。
type staleBalanceRepo struct {
	usecase.AccountRepository
	posted decimal.Decimal
}

func (r *staleBalanceRepo) PostTransaction(_ context.Context, tran *domain.Transaction) (bool, decimal.Decimal, error) {
	return tran.Type == domain.TransactionTypeDeposit, r.posted, nil
}

func (r *staleBalanceRepo) GetAccountBalance(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return d(-999), nil
}

func TestCoreReturnsBalanceFromSameOperation(t *testing.T) {
	ctx := context.Background()
	core := usecase.NewCoreUseCase(&staleBalanceRepo{posted: d(42)})

	bal, err := core.Deposit(ctx, uuid.New(), d(1))
	if err != nil || !bal.Equal(d(42)) {
		t.Fatalf("deposit bal=%s err=%v", bal, err)
	}
	ok, bal, err := core.Withdraw(ctx, uuid.New(), d(1))
	if err != nil || ok || !bal.Equal(d(42)) {
		t.Fatalf("withdraw ok=%v bal=%s err=%v", ok, bal, err)
	}
}
