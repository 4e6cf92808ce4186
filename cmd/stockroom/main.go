// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command stockroom is the command-line client for the Stockroom API.
//
// It keeps the bearer token between runs and routes every product command
// through the same guard a browser client would use.
package main

import (
	"os"
)

func main() {
	if err := execute(NewRootCmd(newEnvironment())); err != nil {
		os.Exit(1)
	}
}
