package main

import "github.com/storysense-dev/storysense/internal/cli"

func main() {
	cli.Execute()
}
