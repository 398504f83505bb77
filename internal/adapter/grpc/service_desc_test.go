package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/k1s0-platform/service-server-go-drinks/internal/domain/model"
)

func TestRegisterDrinkServiceServer(t *testing.T) {
	s := grpc.NewServer()

	assert.NotPanics(t, func() {
		RegisterDrinkServiceServer(s, &DrinkGRPCService{})
	})

	info, ok := s.GetServiceInfo()[DrinkServiceName]
	require.True(t, ok, "DrinkService should be registered")
	assert.Len(t, info.Methods, 5)

	methodNames := make([]string, 0, len(info.Methods))
	for _, m := range info.Methods {
		methodNames = append(methodNames, m.Name)
	}
	assert.ElementsMatch(t, []string{"ListDrinks", "ListDrinksDetail", "CreateDrink", "UpdateDrink", "DeleteDrink"}, methodNames)
}

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&DeleteDrinkRequest{Id: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3}`, string(data))

	var req DeleteDrinkRequest
	require.NoError(t, codec.Unmarshal(data, &req))
	assert.Equal(t, int64(3), req.Id)
}

func TestDrinkService_OverBufconn(t *testing.T) {
	ts := newTestService()
	ts.listUC.On("Execute", mock.Anything).Return([]*model.Drink{
		{ID: 1, Title: "water", Recipe: []model.Ingredient{{Name: "water", Color: "blue", Parts: 1}}},
	}, nil)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(newTestInterceptor()))
	RegisterDrinkServiceServer(srv, ts.svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(JSONCodec{}.Name())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var listResp ListDrinksResponse
	require.NoError(t, conn.Invoke(context.Background(), MethodListDrinks, &ListDrinksRequest{}, &listResp))
	require.Len(t, listResp.Drinks, 1)
	assert.Equal(t, "water", listResp.Drinks[0].Title)
	assert.Zero(t, listResp.Drinks[0].Recipe[0].Parts)

	var deleteResp DeleteDrinkResponse
	err = conn.Invoke(context.Background(), MethodDeleteDrink, &DeleteDrinkRequest{Id: 1}, &deleteResp)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer barista")
	err = conn.Invoke(ctx, MethodDeleteDrink, &DeleteDrinkRequest{Id: 1}, &deleteResp)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	ts.deleteUC.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
