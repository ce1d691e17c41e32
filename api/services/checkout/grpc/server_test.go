package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v72"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tbeaudouin05/flutter-checkout/api/services/checkout/app"
)

// fakeGateway records the params it receives and answers with a fixed session or error.
type fakeGateway struct {
	mu     sync.Mutex
	params []*stripe.CheckoutSessionParams
	err    error
}

func (f *fakeGateway) NewCheckoutSession(ctx context.Context, p *stripe.CheckoutSessionParams) (stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, p)
	if f.err != nil {
		return stripe.CheckoutSession{}, f.err
	}
	return stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/pay/cs_test"}, nil
}

func (f *fakeGateway) calls() []*stripe.CheckoutSessionParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*stripe.CheckoutSessionParams(nil), f.params...)
}

// panicService blows up inside the entry point.
type panicService struct{}

func (panicService) CreatePaymentSession(ctx context.Context, amount float64) (string, error) {
	panic("boom")
}

func (panicService) CreateSubscriptionSession(ctx context.Context, amount float64) (string, error) {
	panic("boom")
}

func newBufClient(t *testing.T, srv *Server) CheckoutClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.UnaryInterceptor()))
	Register(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewCheckoutClient(conn)
}

func TestGetPaymentSession_ReturnsURL(t *testing.T) {
	gw := &fakeGateway{}
	client := newBufClient(t, New(app.NewService(gw)))

	res, err := client.GetPaymentSession(context.Background(), AmountRequest(10))
	require.NoError(t, err)
	url, ok := SessionURL(res)
	assert.True(t, ok)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test", url)

	calls := gw.calls()
	require.Len(t, calls, 1)
	pd := calls[0].LineItems[0].PriceData
	assert.Equal(t, "payment", *calls[0].Mode)
	assert.Equal(t, int64(1000), *pd.UnitAmount)
	assert.Equal(t, "USD", *pd.Currency)
	assert.Equal(t, "Flutter Payment", *pd.ProductData.Name)
	assert.Nil(t, pd.Recurring)
}

func TestGetSubscriptionSession_ReturnsURL(t *testing.T) {
	gw := &fakeGateway{}
	client := newBufClient(t, New(app.NewService(gw)))

	res, err := client.GetSubscriptionSession(context.Background(), AmountRequest(5))
	require.NoError(t, err)
	_, ok := SessionURL(res)
	assert.True(t, ok)

	calls := gw.calls()
	require.Len(t, calls, 1)
	pd := calls[0].LineItems[0].PriceData
	assert.Equal(t, "subscription", *calls[0].Mode)
	assert.Equal(t, int64(500), *pd.UnitAmount)
	require.NotNil(t, pd.Recurring)
	assert.Equal(t, "month", *pd.Recurring.Interval)
	assert.Equal(t, int64(1), *pd.Recurring.IntervalCount)
}

func TestCallables_ProviderFailureReturnsNull(t *testing.T) {
	gw := &fakeGateway{err: errors.New("Invalid API Key provided")}
	client := newBufClient(t, New(app.NewService(gw)))

	res, err := client.GetPaymentSession(context.Background(), AmountRequest(10))
	require.NoError(t, err)
	assert.IsType(t, &structpb.Value_NullValue{}, res.GetKind())

	res, err = client.GetSubscriptionSession(context.Background(), AmountRequest(5))
	require.NoError(t, err)
	_, ok := SessionURL(res)
	assert.False(t, ok)
}

func TestCallables_BadAmountReturnsNull(t *testing.T) {
	gw := &fakeGateway{}
	client := newBufClient(t, New(app.NewService(gw)))

	inputs := []*structpb.Struct{
		{},
		{Fields: map[string]*structpb.Value{"amount": structpb.NewNullValue()}},
		{Fields: map[string]*structpb.Value{"amount": structpb.NewStringValue("ten")}},
		{Fields: map[string]*structpb.Value{"amount": structpb.NewBoolValue(true)}},
		AmountRequest(-1),
		AmountRequest(0),
		AmountRequest(1.005),
	}
	for _, in := range inputs {
		res, err := client.GetPaymentSession(context.Background(), in)
		require.NoError(t, err)
		_, ok := SessionURL(res)
		assert.False(t, ok, "input %v", in)
	}
	assert.Empty(t, gw.calls())
}

func TestCallables_NumericStringAmount(t *testing.T) {
	gw := &fakeGateway{}
	client := newBufClient(t, New(app.NewService(gw)))

	in := &structpb.Struct{Fields: map[string]*structpb.Value{"amount": structpb.NewStringValue(" 12.34 ")}}
	res, err := client.GetPaymentSession(context.Background(), in)
	require.NoError(t, err)
	_, ok := SessionURL(res)
	assert.True(t, ok)
	require.Len(t, gw.calls(), 1)
	assert.Equal(t, int64(1234), *gw.calls()[0].LineItems[0].PriceData.UnitAmount)
}

func TestCallables_PanicReturnsNull(t *testing.T) {
	client := newBufClient(t, New(panicService{}))

	res, err := client.GetPaymentSession(context.Background(), AmountRequest(10))
	require.NoError(t, err)
	_, ok := SessionURL(res)
	assert.False(t, ok)
}

func TestCallables_ConcurrentCallsAreIndependent(t *testing.T) {
	gw := &fakeGateway{}
	client := newBufClient(t, New(app.NewService(gw)))

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			res, err := client.GetPaymentSession(context.Background(), AmountRequest(amount))
			assert.NoError(t, err)
			_, ok := SessionURL(res)
			assert.True(t, ok)
		}(float64(i))
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, p := range gw.calls() {
		seen[*p.LineItems[0].PriceData.UnitAmount] = true
	}
	assert.Len(t, seen, 20)
	for i := int64(1); i <= 20; i++ {
		assert.True(t, seen[i*100], "missing unit amount %d", i*100)
	}
}

func TestAmountFrom(t *testing.T) {
	v, err := amountFrom(AmountRequest(3.5))
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = amountFrom(nil)
	assert.Error(t, err)
}
