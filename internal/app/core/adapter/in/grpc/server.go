package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-account/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-account/internal/app/core/usecase"
	pb "github.com/JoeShih716/go-mem-account/proto"
)

type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

// CreateAccount 開戶，user 不合法時回傳 InvalidArgument
func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	userID, err := parseWholeNumber(req, pb.FieldUserID)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:   userID,
		Name: fields[pb.FieldUserName].GetStringValue(),
	}
	if !domain.IsValidUser(user) {
		return nil, status.Error(codes.InvalidArgument, domain.ErrInvalidUser.Error())
	}

	var opts []domain.AccountOption
	if raw := fields[pb.FieldInitialBalance].GetStringValue(); raw != "" {
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", pb.FieldInitialBalance, err)
		}
		opts = append(opts, domain.WithInitialBalance(balance))
	}

	account, err := s.core.CreateAccount(ctx, *user, opts...)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		pb.FieldAccountID: account.ID.String(),
		pb.FieldBalance:   account.Balance().String(),
	})
}

func (s *GrpcServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accountID, amount, err := parseAccountAmount(req)
	if err != nil {
		return nil, err
	}
	balance, err := s.core.Deposit(ctx, accountID, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		pb.FieldBalance: balance.String(),
	})
}

// Withdraw 提款；餘額不足回傳 Success=false (Soft Failure)，不是 gRPC 錯誤
func (s *GrpcServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accountID, amount, err := parseAccountAmount(req)
	if err != nil {
		return nil, err
	}
	ok, balance, err := s.core.Withdraw(ctx, accountID, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := map[string]any{
		pb.FieldSuccess: ok,
		pb.FieldBalance: balance.String(),
	}
	if !ok {
		resp[pb.FieldMessage] = "insufficient balance"
	}
	return newStruct(resp)
}

func (s *GrpcServer) GetBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accountID, err := parseAccountID(req)
	if err != nil {
		return nil, err
	}
	balance, err := s.core.GetBalance(ctx, accountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		pb.FieldBalance: balance.String(),
	})
}

func (s *GrpcServer) SyncWithBank(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accountID, err := parseAccountID(req)
	if err != nil {
		return nil, err
	}
	msg, err := s.core.SyncWithBank(ctx, accountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		pb.FieldMessage: msg,
	})
}

func (s *GrpcServer) FetchUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseWholeNumber(req, pb.FieldID)
	if err != nil {
		return nil, err
	}
	user, err := s.core.FetchUser(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		pb.FieldID:   user.ID,
		pb.FieldName: user.Name,
	})
}

func (s *GrpcServer) GetStatus(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	st, err := s.core.GetStatus(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		pb.FieldStatus: st,
	})
}

func (s *GrpcServer) GreetUser(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user := domain.User{Name: req.GetFields()[pb.FieldName].GetStringValue()}
	return newStruct(map[string]any{
		pb.FieldGreeting: domain.GreetUser(user),
	})
}

func (s *GrpcServer) CalculateArea(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	area := domain.CalculateArea(fields[pb.FieldWidth].GetNumberValue(), fields[pb.FieldHeight].GetNumberValue())
	return newStruct(map[string]any{
		pb.FieldArea: area,
	})
}

// maxExactInteger float64 能精確表示的最大整數 (2^53)
const maxExactInteger = 1 << 53

// parseWholeNumber 讀取整數欄位，缺少時為 0
//
// structpb 的數字都是 float64，小數、NaN、Inf 或超出 2^53 的值直接拒絕，
// 避免被無聲截斷成另一個 ID。
func parseWholeNumber(req *structpb.Struct, field string) (int64, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s: not a number", field)
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactInteger {
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s: %v is not a whole number", field, f)
	}
	return int64(f), nil
}

func parseAccountID(req *structpb.Struct) (uuid.UUID, error) {
	raw := req.GetFields()[pb.FieldAccountID].GetStringValue()
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", pb.FieldAccountID, err)
	}
	return id, nil
}

func parseAccountAmount(req *structpb.Struct) (uuid.UUID, decimal.Decimal, error) {
	id, err := parseAccountID(req)
	if err != nil {
		return uuid.Nil, decimal.Zero, err
	}
	amount, err := decimal.NewFromString(req.GetFields()[pb.FieldAmount].GetStringValue())
	if err != nil {
		return uuid.Nil, decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s: %v", pb.FieldAmount, err)
	}
	return id, amount, nil
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

// toStatus 把 domain error 轉成 gRPC status
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrAmountMustBePositive),
		errors.Is(err, domain.ErrAmountTooPrecise),
		errors.Is(err, domain.ErrInvalidUser):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrLedgerStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var _ pb.AccountServiceServer = (*GrpcServer)(nil)
