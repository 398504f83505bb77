package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// JSONCodec は JSON ベースの gRPC コーデック。
type JSONCodec struct{}

func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string { return "json" }

// DrinkServiceName は gRPC のサービス名。
const DrinkServiceName = "k1s0.service.drinks.v1.DrinkService"

// 各 RPC のフルメソッド名。
const (
	MethodListDrinks       = "/" + DrinkServiceName + "/ListDrinks"
	MethodListDrinksDetail = "/" + DrinkServiceName + "/ListDrinksDetail"
	MethodCreateDrink      = "/" + DrinkServiceName + "/CreateDrink"
	MethodUpdateDrink      = "/" + DrinkServiceName + "/UpdateDrink"
	MethodDeleteDrink      = "/" + DrinkServiceName + "/DeleteDrink"
)

// DrinkServiceServer は gRPC DrinkService のサーバーインターフェース。
type DrinkServiceServer interface {
	ListDrinks(ctx context.Context, req *ListDrinksRequest) (*ListDrinksResponse, error)
	ListDrinksDetail(ctx context.Context, req *ListDrinksRequest) (*ListDrinksResponse, error)
	CreateDrink(ctx context.Context, req *CreateDrinkRequest) (*CreateDrinkResponse, error)
	UpdateDrink(ctx context.Context, req *UpdateDrinkRequest) (*UpdateDrinkResponse, error)
	DeleteDrink(ctx context.Context, req *DeleteDrinkRequest) (*DeleteDrinkResponse, error)
}

// RegisterDrinkServiceServer は DrinkServiceServer を gRPC サーバーに登録する。
func RegisterDrinkServiceServer(s grpc.ServiceRegistrar, svc DrinkServiceServer) {
	s.RegisterService(&drinkServiceDesc, svc)
}

var drinkServiceDesc = grpc.ServiceDesc{
	ServiceName: DrinkServiceName,
	HandlerType: (*DrinkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListDrinks", Handler: listDrinksHandler},
		{MethodName: "ListDrinksDetail", Handler: listDrinksDetailHandler},
		{MethodName: "CreateDrink", Handler: createDrinkHandler},
		{MethodName: "UpdateDrink", Handler: updateDrinkHandler},
		{MethodName: "DeleteDrink", Handler: deleteDrinkHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "v1/drink_service.proto",
}

// unaryHandler は MethodDesc のハンドラーを組み立てる。
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(srv DrinkServiceServer, ctx context.Context, req *Req) (*Resp, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DrinkServiceServer), ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DrinkServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var (
	listDrinksHandler = unaryHandler(MethodListDrinks,
		func(srv DrinkServiceServer, ctx context.Context, req *ListDrinksRequest) (*ListDrinksResponse, error) {
			return srv.ListDrinks(ctx, req)
		})
	listDrinksDetailHandler = unaryHandler(MethodListDrinksDetail,
		func(srv DrinkServiceServer, ctx context.Context, req *ListDrinksRequest) (*ListDrinksResponse, error) {
			return srv.ListDrinksDetail(ctx, req)
		})
	createDrinkHandler = unaryHandler(MethodCreateDrink,
		func(srv DrinkServiceServer, ctx context.Context, req *CreateDrinkRequest) (*CreateDrinkResponse, error) {
			return srv.CreateDrink(ctx, req)
		})
	updateDrinkHandler = unaryHandler(MethodUpdateDrink,
		func(srv DrinkServiceServer, ctx context.Context, req *UpdateDrinkRequest) (*UpdateDrinkResponse, error) {
			return srv.UpdateDrink(ctx, req)
		})
	deleteDrinkHandler = unaryHandler(MethodDeleteDrink,
		func(srv DrinkServiceServer, ctx context.Context, req *DeleteDrinkRequest) (*DeleteDrinkResponse, error) {
			return srv.DeleteDrink(ctx, req)
		})
)
