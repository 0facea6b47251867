package main

import "github.com/lanzouproxy/lanzouproxy/internal/cli"

func main() {
	cli.Execute()
}
