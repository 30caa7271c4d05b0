// Package main provides the satreq CLI.
package main

import "github.com/mesh-intelligence/satreq/internal/cli"

func main() {
	cli.Execute()
}
