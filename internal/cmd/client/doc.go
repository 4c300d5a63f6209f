// Package client provides the chatd command-line client.
//
// Request/response commands use the HTTP API; `live tail` follows the
// broadcast feed over gRPC.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. The standalone binary reads CHATD_HTTP
// (default http://127.0.0.1:3000). The gRPC address is read from
// CHATD_GRPC (default 127.0.0.1:3001).
//
// Usage
//
//	chatd channels create general
//	chatd channels list
//	chatd channels list --posts
//	chatd channels delete general
//
//	chatd posts send general --content "hello" --author amy
//	chatd posts list general --limit 20
//
//	chatd live tail
//	chatd live tail --filter 'json.channel == "general"' --limit 5
package client
