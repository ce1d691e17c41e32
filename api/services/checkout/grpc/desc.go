package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The service speaks the callable contract directly: the request is the callable
// `data` object and the response is the callable result (a URL string or null).
const (
	ServiceName = "checkout.v1.CheckoutService"

	GetPaymentSessionMethod      = "/" + ServiceName + "/GetPaymentSession"
	GetSubscriptionSessionMethod = "/" + ServiceName + "/GetSubscriptionSession"
)

// CheckoutServer is the server API for the checkout service.
type CheckoutServer interface {
	GetPaymentSession(ctx context.Context, data *structpb.Struct) (*structpb.Value, error)
	GetSubscriptionSession(ctx context.Context, data *structpb.Struct) (*structpb.Value, error)
}

type unaryCall func(ctx context.Context, data *structpb.Struct) (*structpb.Value, error)

// unaryHandler adapts one CheckoutServer method to a grpc.MethodDesc Handler.
func unaryHandler(fullMethod string, pick func(CheckoutServer) unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		call := pick(srv.(CheckoutServer))
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for the checkout service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CheckoutServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetPaymentSession",
			Handler: unaryHandler(GetPaymentSessionMethod, func(s CheckoutServer) unaryCall {
				return s.GetPaymentSession
			}),
		},
		{
			MethodName: "GetSubscriptionSession",
			Handler: unaryHandler(GetSubscriptionSessionMethod, func(s CheckoutServer) unaryCall {
				return s.GetSubscriptionSession
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// Register registers srv with a gRPC server.
func Register(s grpc.ServiceRegistrar, srv CheckoutServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// CheckoutClient is the client API for the checkout service.
type CheckoutClient interface {
	GetPaymentSession(ctx context.Context, data *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error)
	GetSubscriptionSession(ctx context.Context, data *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error)
}

type checkoutClient struct {
	cc grpc.ClientConnInterface
}

func NewCheckoutClient(cc grpc.ClientConnInterface) CheckoutClient {
	return &checkoutClient{cc: cc}
}

func (c *checkoutClient) GetPaymentSession(ctx context.Context, data *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, GetPaymentSessionMethod, data, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *checkoutClient) GetSubscriptionSession(ctx context.Context, data *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, GetSubscriptionSessionMethod, data, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// AmountRequest builds the callable data object {amount: amount}.
func AmountRequest(amount float64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"amount": structpb.NewNumberValue(amount),
	}}
}

// SessionURL unpacks a callable result. ok is false for a null result.
func SessionURL(v *structpb.Value) (url string, ok bool) {
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", false
	}
	return s.StringValue, true
}
