package grpcserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/tbeaudouin05/flutter-checkout/api/services/checkout/app"
)

func newGatewayServer(t *testing.T, srv *Server) *httptest.Server {
	t.Helper()
	mux := runtime.NewServeMux(runtime.WithIncomingHeaderMatcher(HeaderMatcher))
	require.NoError(t, RegisterGateway(mux, srv))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postCallable(t *testing.T, url, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestGateway_PaymentSessionResult(t *testing.T) {
	gw := &fakeGateway{}
	ts := newGatewayServer(t, New(app.NewService(gw)))

	code, out := postCallable(t, ts.URL+GetPaymentSessionPath, `{"data":{"amount":10}}`, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test", out["result"])
	require.Len(t, gw.calls(), 1)
	assert.Equal(t, int64(1000), *gw.calls()[0].LineItems[0].PriceData.UnitAmount)
}

func TestGateway_SubscriptionSessionResult(t *testing.T) {
	gw := &fakeGateway{}
	ts := newGatewayServer(t, New(app.NewService(gw)))

	code, out := postCallable(t, ts.URL+GetSubscriptionSessionPath, `{"data":{"amount":5}}`, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test", out["result"])
	require.Len(t, gw.calls(), 1)
	assert.Equal(t, "subscription", *gw.calls()[0].Mode)
	assert.Equal(t, int64(500), *gw.calls()[0].LineItems[0].PriceData.UnitAmount)
}

func TestGateway_ProviderFailureIsNullResult(t *testing.T) {
	ts := newGatewayServer(t, New(app.NewService(&fakeGateway{err: errors.New("network unreachable")})))

	code, out := postCallable(t, ts.URL+GetPaymentSessionPath, `{"data":{"amount":10}}`, nil)
	assert.Equal(t, http.StatusOK, code)
	result, ok := out["result"]
	assert.True(t, ok)
	assert.Nil(t, result)
	assert.NotContains(t, out, "error")
}

func TestGateway_NonObjectDataIsNullResult(t *testing.T) {
	gw := &fakeGateway{}
	ts := newGatewayServer(t, New(app.NewService(gw)))

	for _, body := range []string{`{"data":null}`, `{"data":10}`, `{"data":{}}`} {
		code, out := postCallable(t, ts.URL+GetPaymentSessionPath, body, nil)
		assert.Equal(t, http.StatusOK, code, body)
		assert.Nil(t, out["result"], body)
	}
	assert.Empty(t, gw.calls())
}

func TestGateway_MalformedEnvelope(t *testing.T) {
	ts := newGatewayServer(t, New(app.NewService(&fakeGateway{})))

	for _, body := range []string{`{"amount":10}`, `not json`} {
		code, out := postCallable(t, ts.URL+GetPaymentSessionPath, body, nil)
		assert.Equal(t, http.StatusBadRequest, code, body)
		errBody, _ := out["error"].(map[string]any)
		assert.Equal(t, "INVALID_ARGUMENT", errBody["status"], body)
	}
}

func TestGateway_RejectsNonJSONContentType(t *testing.T) {
	ts := newGatewayServer(t, New(app.NewService(&fakeGateway{})))

	resp, err := http.Post(ts.URL+GetPaymentSessionPath, "text/plain", bytes.NewReader([]byte(`{"data":{"amount":10}}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGateway_UnauthenticatedError(t *testing.T) {
	ts := newGatewayServer(t, New(app.NewService(&fakeGateway{}), WithTokenVerifier(fakeVerifier{}, true)))

	code, out := postCallable(t, ts.URL+GetPaymentSessionPath, `{"data":{"amount":10}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	errBody, _ := out["error"].(map[string]any)
	assert.Equal(t, "UNAUTHENTICATED", errBody["status"])

	code, out = postCallable(t, ts.URL+GetPaymentSessionPath, `{"data":{"amount":10}}`, map[string]string{"Authorization": "Bearer good-token"})
	assert.Equal(t, http.StatusOK, code)
	assert.NotNil(t, out["result"])
}

func TestGateway_ForwardsRequestID(t *testing.T) {
	var got string
	capture := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		got = RequestIDFromContext(ctx)
		return handler(ctx, req)
	}
	ts := newGatewayServer(t, New(app.NewService(&fakeGateway{}), WithUnaryInterceptor(capture)))

	code, _ := postCallable(t, ts.URL+GetPaymentSessionPath, `{"data":{"amount":10}}`, map[string]string{"X-Request-Id": "req-http-1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "req-http-1", got)
}

func TestUnavailableHandler_WritesCallableError(t *testing.T) {
	ts := httptest.NewServer(UnavailableHandler(runtime.NewServeMux()))
	t.Cleanup(ts.Close)

	code, out := postCallable(t, ts.URL+GetPaymentSessionPath, `{"data":{"amount":10}}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	errBody, ok := out["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", out)
	assert.Equal(t, "UNAVAILABLE", errBody["status"])
	assert.Equal(t, "service unavailable", errBody["message"])
}

func TestHeaderMatcher(t *testing.T) {
	key, ok := HeaderMatcher("x-request-id")
	assert.True(t, ok)
	assert.Equal(t, RequestIDHeader, key)

	key, ok = HeaderMatcher("Firebase-Instance-Id-Token")
	assert.True(t, ok)
	assert.Equal(t, "firebase-instance-id-token", key)

	_, ok = HeaderMatcher("X-Unrelated")
	assert.False(t, ok)
}
