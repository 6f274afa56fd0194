/*
Command citykit serves and inspects the city recommender.

Usage:

	citykit [command]

Available Commands:

	serve      Run the HTTP API
	validate   Load every artifact and check that the shapes agree
	recommend  Print the top cities for one set of answers

Configuration is read from --config (YAML) with CITYKIT_* environment
overrides, e.g. CITYKIT_STORE_KIND=redis.
*/
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
