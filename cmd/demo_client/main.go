package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-account/pkg/grpc"
	pb "github.com/JoeShih716/go-mem-account/proto"
)

func main() {
	target := flag.String("target", "localhost:50051", "account service address")
	keepaliveTime := flag.Duration("keepalive", 0, "client keepalive ping interval (0 keeps the pool default)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pool := grpc.NewPool(poolOptions(logger, *keepaliveTime)...)
	defer pool.Close()

	conn, err := pool.GetConnection(*target)
	if err != nil {
		logger.Error("did not connect", slog.Any("error", err))
		os.Exit(1)
	}
	c := pb.NewAccountServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, c); err != nil {
		logger.Error("demo failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// poolOptions 組出連線池設定，keepaliveTime > 0 時覆蓋預設的 ping 間隔
func poolOptions(logger *slog.Logger, keepaliveTime time.Duration) []grpc.PoolOption {
	opts := []grpc.PoolOption{grpc.WithInterceptor(grpc.LoggingInterceptor(logger))}
	if keepaliveTime > 0 {
		opts = append(opts, grpc.WithKeepalive(keepalive.ClientParameters{
			Time:                keepaliveTime,
			Timeout:             time.Second,
			PermitWithoutStream: true,
		}))
	}
	return opts
}

// run 走一遍開戶、存款、提款 (失敗與成功)、同步與其他輔助呼叫
func run(ctx context.Context, c *pb.AccountServiceClient) error {
	greet, err := c.Call(ctx, pb.MethodGreetUser, map[string]any{pb.FieldName: "Jane"})
	if err != nil {
		return err
	}
	fmt.Println(field(greet, pb.FieldGreeting))

	area, err := c.Call(ctx, pb.MethodCalculateArea, map[string]any{pb.FieldWidth: 3, pb.FieldHeight: 4})
	if err != nil {
		return err
	}
	fmt.Println("area:", field(area, pb.FieldArea))

	user, err := c.Call(ctx, pb.MethodFetchUser, map[string]any{pb.FieldID: 1})
	if err != nil {
		return err
	}
	fmt.Println("fetched user:", field(user, pb.FieldName))

	created, err := c.Call(ctx, pb.MethodCreateAccount, map[string]any{
		pb.FieldUserID:         1,
		pb.FieldUserName:       "A",
		pb.FieldInitialBalance: "100",
	})
	if err != nil {
		return err
	}
	accountID := field(created, pb.FieldAccountID)
	fmt.Println("account:", accountID, "balance:", field(created, pb.FieldBalance))

	dep, err := c.Call(ctx, pb.MethodDeposit, map[string]any{pb.FieldAccountID: accountID, pb.FieldAmount: "50"})
	if err != nil {
		return err
	}
	fmt.Println("after deposit 50:", field(dep, pb.FieldBalance))

	for _, amount := range []string{"200", "150"} {
		w, err := c.Call(ctx, pb.MethodWithdraw, map[string]any{pb.FieldAccountID: accountID, pb.FieldAmount: amount})
		if err != nil {
			return err
		}
		fmt.Printf("withdraw %s: success=%s balance=%s\n", amount, field(w, pb.FieldSuccess), field(w, pb.FieldBalance))
	}

	sync, err := c.Call(ctx, pb.MethodSyncWithBank, map[string]any{pb.FieldAccountID: accountID})
	if err != nil {
		return err
	}
	fmt.Println(field(sync, pb.FieldMessage))

	st, err := c.Call(ctx, pb.MethodGetStatus, nil)
	if err != nil {
		return err
	}
	fmt.Println("status:", field(st, pb.FieldStatus))
	return nil
}

func field(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return fmt.Sprint(k.BoolValue)
	case *structpb.Value_NumberValue:
		return fmt.Sprint(k.NumberValue)
	default:
		return v.String()
	}
}
