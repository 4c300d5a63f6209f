package client

import (
	"context"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// APIURLFromEnv returns the HTTP API base URL from CHATD_HTTP or a default.
func APIURLFromEnv() string {
	if v := os.Getenv("CHATD_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:3000"
}

// grpcAddrFromEnv returns the gRPC server address from CHATD_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("CHATD_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:3001"
}

// dialGRPC connects to the chatd gRPC endpoint with insecure transport for local/dev.
func dialGRPC(context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}
