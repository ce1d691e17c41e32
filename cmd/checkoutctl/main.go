package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	grpcserver "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/grpc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 for a URL, 2 for a null result, 1 for errors.
func run(args []string, stdout, stderr io.Writer) int {
	var (
		addr    string
		mode    string
		amount  float64
		token   string
		timeout time.Duration
	)

	fs := flag.NewFlagSet("checkoutctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&addr, "addr", "localhost:50051", "gRPC address of the checkout server")
	fs.StringVar(&mode, "mode", "payment", "session mode: payment or subscription")
	fs.Float64Var(&amount, "amount", 0, "amount in USD, e.g. 10 or 4.99")
	fs.StringVar(&token, "token", "", "optional Firebase ID token sent as a bearer token")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if amount <= 0 {
		return fail(stderr, errors.New("amount must be positive"))
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fail(stderr, fmt.Errorf("failed to connect to %s: %w", addr, err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}

	res, err := call(ctx, grpcserver.NewCheckoutClient(conn), mode, amount)
	if err != nil {
		return fail(stderr, err)
	}
	if url, ok := grpcserver.SessionURL(res); ok {
		fmt.Fprintln(stdout, url)
		return 0
	}
	fmt.Fprintln(stdout, "null")
	return 2
}

func call(ctx context.Context, client grpcserver.CheckoutClient, mode string, amount float64) (*structpb.Value, error) {
	req := grpcserver.AmountRequest(amount)
	switch mode {
	case "payment":
		return client.GetPaymentSession(ctx, req)
	case "subscription":
		return client.GetSubscriptionSession(ctx, req)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
