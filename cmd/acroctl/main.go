// Copyright 2025 The AcroServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// acroctl manages the acronym store used by acroserve: seed it, import and
// export catalogs, validate files and inspect what is stored.
package main

import (
	"os"

	"github.com/bastiangx/acroserve/cmd/acroctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
