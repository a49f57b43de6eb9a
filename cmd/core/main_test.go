package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	memory_adapter "github.com/JoeShih716/go-mem-account/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-account/internal/config"
	"github.com/JoeShih716/go-mem-account/pkg/wal"
	pb "github.com/JoeShih716/go-mem-account/proto"
)

type failingLoader struct{}

func (failingLoader) LoadAllAccounts(context.Context) (map[uuid.UUID]*domain.Account, error) {
	return nil, errors.New("db down")
}

func TestLoadSeedLogsCount(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	source, err := memory_adapter.NewMutexLedger(nil, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	for i := int64(1); i <= 2; i++ {
		if err := source.CreateAccount(ctx, domain.NewAccount(domain.User{ID: i, Name: "A"})); err != nil {
			t.Fatal(err)
		}
	}

	seed, err := loadSeed(ctx, source, logger)
	if err != nil || len(seed) != 2 {
		t.Fatalf("seed=%d err=%v", len(seed), err)
	}
	if !strings.Contains(logs.String(), `msg="loaded accounts" count=2`) {
		t.Fatalf("logs:\n%s", logs.String())
	}

	if _, err := loadSeed(ctx, failingLoader{}, logger); err == nil {
		t.Fatal("loader error should propagate")
	}
}

func TestNewMemoryLedgerUsesSeed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	account := domain.NewAccount(domain.User{ID: 1, Name: "A"}, domain.WithInitialBalance(decimal.NewFromInt(80)))
	seed := map[uuid.UUID]*domain.Account{account.ID: account}

	for _, driver := range []config.StorageDriver{config.StorageMemory, config.StorageLMAX} {
		t.Run(string(driver), func(t *testing.T) {
			ctx := context.Background()
			walFile, err := wal.Open(filepath.Join(t.TempDir(), "wal.log"))
			if err != nil {
				t.Fatal(err)
			}
			defer walFile.Close()

			repo, stop, err := newMemoryLedger(driver, seed, walFile, logger)
			if err != nil {
				t.Fatal(err)
			}
			defer stop()

			ok, bal, err := repo.PostTransaction(ctx, domain.NewTransaction(account.ID, domain.TransactionTypeDeposit, decimal.NewFromInt(20)))
			if err != nil || !ok || !bal.Equal(decimal.NewFromInt(100)) {
				t.Fatalf("ok=%v bal=%s err=%v", ok, bal, err)
			}
		})
	}

	if _, _, err := newMemoryLedger(config.StorageMySQL, nil, nil, logger); err == nil {
		t.Fatal("mysql is not an in-memory driver")
	}
}

func TestLMAXStopRejectsLaterCalls(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, stop, err := newMemoryLedger(config.StorageLMAX, nil, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	stop()
	if _, err := repo.GetAccountBalance(context.Background(), uuid.New()); !errors.Is(err, domain.ErrLedgerStopped) {
		t.Fatalf("want ErrLedgerStopped, got %v", err)
	}
}

func TestGRPCServerRegistersOnlyAccountService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newGRPCServer(usecase.NewCoreUseCase(nil), logger)
	defer s.Stop()

	info := s.GetServiceInfo()
	if len(info) != 1 {
		t.Fatalf("services=%v", info)
	}
	if _, ok := info[pb.ServiceName]; !ok {
		t.Fatalf("missing %s in %v", pb.ServiceName, info)
	}
}
