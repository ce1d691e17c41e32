package grpcserver

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/textproto"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/rpc/code"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Callable HTTP paths, named after the functions the Flutter app invokes.
const (
	GetPaymentSessionPath      = "/getPaymentSession"
	GetSubscriptionSessionPath = "/getSubscriptionSession"
)

// maxCallableBody bounds the request body of a callable.
const maxCallableBody = 1 << 20

// HeaderMatcher forwards the request id and the Firebase headers to gRPC metadata.
// Authorization is always forwarded by the gateway.
func HeaderMatcher(key string) (string, bool) {
	switch textproto.CanonicalMIMEHeaderKey(key) {
	case "X-Request-Id":
		return RequestIDHeader, true
	case "Firebase-Instance-Id-Token":
		return "firebase-instance-id-token", true
	}
	return runtime.DefaultHeaderMatcher(key)
}

// RegisterGateway serves both callables on mux using the Firebase callable protocol:
// POST {"data": {...}} answered with {"result": ...} or {"error": {"status", "message"}}.
// HTTP calls go through the same interceptor chain as gRPC calls.
func RegisterGateway(mux *runtime.ServeMux, srv *Server) error {
	routes := []struct {
		path   string
		method string
		call   unaryCall
	}{
		{GetPaymentSessionPath, GetPaymentSessionMethod, srv.GetPaymentSession},
		{GetSubscriptionSessionPath, GetSubscriptionSessionMethod, srv.GetSubscriptionSession},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(http.MethodPost, rt.path, srv.callableHandler(mux, rt.path, rt.method, rt.call)); err != nil {
			return fmt.Errorf("failed to register %s: %w", rt.path, err)
		}
	}
	return nil
}

// UnavailableHandler answers every request with an UNAVAILABLE callable error.
func UnavailableHandler(mux *runtime.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, outbound := runtime.MarshalerForRequest(mux, r)
		writeCallableError(w, outbound, status.Error(codes.Unavailable, "service unavailable"))
	})
}

func (s *Server) callableHandler(mux *runtime.ServeMux, path, fullMethod string, call unaryCall) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		inbound, outbound := runtime.MarshalerForRequest(mux, r)

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType != "application/json" {
			writeCallableError(w, outbound, status.Error(codes.InvalidArgument, "content type must be application/json"))
			return
		}

		ctx, err := runtime.AnnotateIncomingContext(r.Context(), mux, r, fullMethod, runtime.WithHTTPPathPattern(path))
		if err != nil {
			writeCallableError(w, outbound, err)
			return
		}

		var envelope structpb.Struct
		if err := inbound.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallableBody)).Decode(&envelope); err != nil {
			writeCallableError(w, outbound, status.Errorf(codes.InvalidArgument, "bad request body: %v", err))
			return
		}
		raw, ok := envelope.GetFields()["data"]
		if !ok {
			writeCallableError(w, outbound, status.Error(codes.InvalidArgument, "request body is missing data"))
			return
		}
		// data that is not an object carries no amount and ends in a null result.
		data := raw.GetStructValue()
		if data == nil {
			data = &structpb.Struct{}
		}

		info := &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod}
		resp, err := s.chain(ctx, data, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*structpb.Struct))
		})
		if err != nil {
			writeCallableError(w, outbound, err)
			return
		}

		result, _ := resp.(*structpb.Value)
		if result == nil {
			result = structpb.NewNullValue()
		}
		writeCallable(w, outbound, http.StatusOK, &structpb.Struct{Fields: map[string]*structpb.Value{"result": result}})
	}
}

// writeCallableError writes the callable error envelope with the canonical status name.
func writeCallableError(w http.ResponseWriter, m runtime.Marshaler, err error) {
	st := status.Convert(err)
	name, ok := code.Code_name[int32(st.Code())]
	if !ok {
		name = code.Code_UNKNOWN.String()
	}
	body := &structpb.Struct{Fields: map[string]*structpb.Value{
		"error": structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"status":  structpb.NewStringValue(name),
			"message": structpb.NewStringValue(st.Message()),
		}}),
	}}
	writeCallable(w, m, runtime.HTTPStatusFromCode(st.Code()), body)
}

func writeCallable(w http.ResponseWriter, m runtime.Marshaler, httpStatus int, body *structpb.Struct) {
	buf, err := m.Marshal(body)
	if err != nil {
		http.Error(w, `{"error":{"status":"INTERNAL","message":"failed to marshal response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", m.ContentType(body))
	w.WriteHeader(httpStatus)
	_, _ = w.Write(buf)
}
