// Package proto 定義 account.v1.AccountService 的 gRPC 服務描述
//
// 不使用 protoc 產生程式碼，所有請求與回應都是 google.protobuf.Struct，
// 欄位名稱以常數列在下方，client 與 server 共用。
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "account.v1.AccountService"

// 方法名稱
const (
	MethodCreateAccount = "CreateAccount"
	MethodDeposit       = "Deposit"
	MethodWithdraw      = "Withdraw"
	MethodGetBalance    = "GetBalance"
	MethodSyncWithBank  = "SyncWithBank"
	MethodFetchUser     = "FetchUser"
	MethodGetStatus     = "GetStatus"
	MethodGreetUser     = "GreetUser"
	MethodCalculateArea = "CalculateArea"
)

// 欄位名稱
const (
	FieldAccountID      = "account_id"
	FieldUserID         = "user_id"
	FieldUserName       = "user_name"
	FieldInitialBalance = "initial_balance"
	FieldAmount         = "amount"
	FieldBalance        = "balance"
	FieldSuccess        = "success"
	FieldMessage        = "message"
	FieldID             = "id"
	FieldName           = "name"
	FieldStatus         = "status"
	FieldGreeting       = "greeting"
	FieldWidth          = "width"
	FieldHeight         = "height"
	FieldArea           = "area"
)

// FullMethod 回傳 "/account.v1.AccountService/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AccountServiceServer 是 server 端需要實作的介面
type AccountServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SyncWithBank(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FetchUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GreetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateArea(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AccountServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler 把 unaryCall 轉成 grpc.MethodHandler，並套用 server 端 interceptor
func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AccountServiceDesc 服務描述，供 grpc.Server.RegisterService 使用
var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateAccount, Handler: unaryHandler(MethodCreateAccount, AccountServiceServer.CreateAccount)},
		{MethodName: MethodDeposit, Handler: unaryHandler(MethodDeposit, AccountServiceServer.Deposit)},
		{MethodName: MethodWithdraw, Handler: unaryHandler(MethodWithdraw, AccountServiceServer.Withdraw)},
		{MethodName: MethodGetBalance, Handler: unaryHandler(MethodGetBalance, AccountServiceServer.GetBalance)},
		{MethodName: MethodSyncWithBank, Handler: unaryHandler(MethodSyncWithBank, AccountServiceServer.SyncWithBank)},
		{MethodName: MethodFetchUser, Handler: unaryHandler(MethodFetchUser, AccountServiceServer.FetchUser)},
		{MethodName: MethodGetStatus, Handler: unaryHandler(MethodGetStatus, AccountServiceServer.GetStatus)},
		{MethodName: MethodGreetUser, Handler: unaryHandler(MethodGreetUser, AccountServiceServer.GreetUser)},
		{MethodName: MethodCalculateArea, Handler: unaryHandler(MethodCalculateArea, AccountServiceServer.CalculateArea)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "account_service.go",
}

// RegisterAccountServiceServer 註冊服務
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

// AccountServiceClient 呼叫 AccountService 的 client
type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

// Call 以 fields 組成請求並呼叫 method
func (c *AccountServiceClient) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
