package main

import "github.com/nforb26-art/tradeanalyser/internal/cli"

func main() {
	cli.Run()
}
