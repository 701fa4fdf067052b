// Command jsonata evaluates JSONata expressions against JSON and YAML
// documents.
//
// Usage:
//
//	jsonata eval 'Account.Order.Product.Price' order.json
//	jsonata ast '$sum(a.b)'
//	jsonata repl order.yaml
//	jsonata batch < requests.ndjson
//
// Run 'jsonata help' for the full list of commands and flags.
package main

import (
	"os"

	"github.com/sandrolain/jsonata/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
