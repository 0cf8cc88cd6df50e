package main

import "github.com/welcometomycity/citycore/internal/cli"

func main() {
	cli.Execute()
}
