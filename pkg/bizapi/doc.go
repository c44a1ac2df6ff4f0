// Package bizapi provides types, interfaces, and helpers for talking to the
// line-of-business backend (catalog, orders, customers, users, agent
// requests, commissions, reports).
//
// # Overview
//
// Every endpoint answers with an Envelope:
//
//	{ "code": 200, "message": "ok", "result": {...}, "success": true }
//
// The package turns each call into a Result: either Success carrying the
// decoded result, or Failure carrying a message that is safe to show to a
// user and a cause for diagnostics. No network, status or decoding failure
// escapes as an error or a panic.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/bizapi/pkg/bizapi"
//	  "github.com/fivetwenty-io/bizapi/pkg/bizclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := bizclient.New(ctx, &bizapi.Config{APIEndpoint: "https://shop.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  orders := cli.Orders().List(ctx, 1)
//	  orders.Match(
//	    func(page bizapi.PagedList[bizapi.Order]) { log.Println(page.TotalPages()) },
//	    func(message string, _ error) { log.Println(message) },
//	  )
//	}
//
// # Errors
//
// Non-2xx statuses are classified by Classify into BadRequest, Unauthorized,
// Forbidden, NotFound, ServerError or Unknown, and carried as a
// *ClassifiedError. Transport and decoding failures are ServerError-kind
// ClassifiedErrors with status 0 or the received status. A 2xx envelope with
// "success": false becomes a Failure with an *APIError cause. Helpers such as
// IsUnauthorized and IsNotFound work on any of them.
//
// # Pagination
//
// List endpoints return a PaginatedEnvelope inside the result; GetPage adopts
// it as a PagedList. NewPagedList cuts a page out of an in-memory slice for
// local data. The Registry holds the page size of each entity type; it is
// injected through Config.Pagination and persisted with a SettingsStore.
//
// # Interceptors
//
// A RequestClient runs an InterceptorChain around each call. The package
// ships logging, header, rate-limit, metrics and circuit-breaker
// interceptors.
package bizapi
