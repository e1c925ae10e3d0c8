package main

import "purl2src/internal/cli"

func main() {
	cli.Execute()
}
