// Package main is the entry point for the revu CLI.
package main

import "revu.dev/pkg/revu/cmd"

func main() {
	cmd.Execute()
}
