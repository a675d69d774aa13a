// Package main provides the zipeasy CLI tool for packing folders into zip
// archives and unpacking them again.
package main

import (
	"os"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
