// Package main implements plainfmt, a command-line front end for the text
// normalizers the bot applies to its replies.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
