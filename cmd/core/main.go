package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-mem-account/internal/app/core/adapter/in/grpc"
	memory_adapter "github.com/JoeShih716/go-mem-account/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-mem-account/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-account/internal/config"
	"github.com/JoeShih716/go-mem-account/pkg/mysql"
	"github.com/JoeShih716/go-mem-account/pkg/wal"
	pb "github.com/JoeShih716/go-mem-account/proto"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 初始化帳本
	repo, cleanup, err := newRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init repository", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	// 3. 初始化 UseCase
	coreUseCase := usecase.NewCoreUseCase(repo,
		usecase.WithLogger(logger),
		usecase.WithDelays(cfg.Delays.FetchUser, cfg.Delays.Status),
	)

	// 4. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		logger.Error("failed to listen", slog.String("addr", cfg.Server.Addr), slog.Any("error", err))
		os.Exit(1)
	}
	s := newGRPCServer(coreUseCase, logger)

	go func() {
		logger.Info("starting grpc server", slog.String("addr", cfg.Server.Addr))
		if err := s.Serve(lis); err != nil {
			logger.Error("failed to serve", slog.Any("error", err))
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Info("shutting down server")
	s.GracefulStop()
	logger.Info("server exited")
}

// newGRPCServer 建立 gRPC server 並註冊 AccountService
//
// 服務描述是手寫的 structpb 介面，沒有註冊 proto file descriptor，
// 因此不開 server reflection (grpcurl 之類的工具無法解析)。
func newGRPCServer(coreUseCase *usecase.CoreUseCase, logger *slog.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.LoggingInterceptor(logger)))
	pb.RegisterAccountServiceServer(s, grpc_adapter.NewGrpcServer(coreUseCase))
	return s
}

// newRepository 依設定建立帳本，回傳的 cleanup 負責停止帳本並關閉 WAL 或 DB
func newRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (usecase.AccountRepository, func(), error) {
	if cfg.Storage.Driver == config.StorageMySQL {
		ledger, closeDB, err := openMySQLLedger(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		// 與記憶體帳本一樣，啟動時先報告目前的帳戶數
		if _, err := loadSeed(ctx, ledger, logger); err != nil {
			closeDB()
			return nil, nil, err
		}
		return ledger, closeDB, nil
	}

	var seed map[uuid.UUID]*domain.Account
	if cfg.Storage.SeedFromMySQL {
		ledger, closeDB, err := openMySQLLedger(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		seed, err = loadSeed(ctx, ledger, logger)
		// 快照載入完就不再需要 DB 連線
		closeDB()
		if err != nil {
			return nil, nil, err
		}
	}

	walFile, err := wal.Open(cfg.Storage.WALPath)
	if err != nil {
		return nil, nil, err
	}
	repo, stopLedger, err := newMemoryLedger(cfg.Storage.Driver, seed, walFile, logger)
	if err != nil {
		_ = walFile.Close()
		return nil, nil, err
	}
	return repo, func() {
		stopLedger()
		_ = walFile.Close()
	}, nil
}

func openMySQLLedger(ctx context.Context, cfg config.Config, logger *slog.Logger) (*mysql_adapter.MySQLLedger, func(), error) {
	dbClient, err := mysql.NewClient(ctx, cfg.MySQL, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to mysql", slog.String("host", cfg.MySQL.Host))
	closeDB := func() { _ = dbClient.Close() }

	ledger := mysql_adapter.NewMySQLLedger(dbClient, logger)
	if err := ledger.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	return ledger, closeDB, nil
}

// accountLoader 可以提供全部帳戶快照的帳本
type accountLoader interface {
	LoadAllAccounts(ctx context.Context) (map[uuid.UUID]*domain.Account, error)
}

// loadSeed 載入全部帳戶並記錄數量
func loadSeed(ctx context.Context, loader accountLoader, logger *slog.Logger) (map[uuid.UUID]*domain.Account, error) {
	accounts, err := loader.LoadAllAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all accounts: %w", err)
	}
	logger.Info("loaded accounts", slog.Int("count", len(accounts)))
	return accounts, nil
}

// newMemoryLedger 建立記憶體帳本，seed 之後再重放 WAL
//
// LMAX 帳本的核心迴圈用自己的 context，回傳的 stop 會在 gRPC server
// 停止後才取消它，讓排隊中的請求先處理完。
func newMemoryLedger(driver config.StorageDriver, seed map[uuid.UUID]*domain.Account, walFile *wal.WAL, logger *slog.Logger) (usecase.AccountRepository, func(), error) {
	switch driver {
	case config.StorageLMAX:
		ledger, err := memory_adapter.NewLMAXLedger(seed, walFile, logger)
		if err != nil {
			return nil, nil, err
		}
		ledgerCtx, cancel := context.WithCancel(context.Background())
		ledger.Start(ledgerCtx)
		return ledger, func() {
			cancel()
			<-ledger.Stopped()
		}, nil
	case config.StorageMemory:
		ledger, err := memory_adapter.NewMutexLedger(seed, walFile, logger)
		if err != nil {
			return nil, nil, err
		}
		return ledger, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("storage driver %q is not in-memory", driver)
	}
}
