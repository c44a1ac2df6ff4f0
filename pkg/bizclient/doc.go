// Package bizclient provides the primary entry point for constructing a
// backend client that implements the bizapi.Client interface.
//
// It normalizes the endpoint, wires transport, credentials, interceptors and
// the pagination registry, and hands back a bizapi.Client whose operations
// all return bizapi.Result values.
//
// Quick start
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
//
//	  // Sign in with a username and password.
//	  cli, err := bizclient.NewWithPassword(ctx, "shop.example.com", "agent", "secret")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or reuse a token you already have:
//	  cli, err = bizclient.NewWithToken(ctx, "https://shop.example.com", "3f0c...")
//
//	  // Page sizes persisted between runs, from any bizapi.SettingsStore:
//	  cli, err = bizclient.NewWithSettings(ctx, &bizapi.Config{APIEndpoint: "shop.example.com"}, store)
//
//	  cli.Orders().List(ctx, 1).Match(
//	    func(page bizapi.PagedList[bizapi.Order]) { log.Printf("%d orders", page.TotalCount) },
//	    func(message string, _ error) { log.Print(message) },
//	  )
//	}
//
// Endpoints without a scheme get "https://"; a trailing slash is trimmed.
package bizclient
