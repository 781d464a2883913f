// Package main provides the groundbase operator CLI: backend health checks,
// record inspection and sequence allocation against whichever backend the
// configuration resolves to.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
