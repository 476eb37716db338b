package main

import "github.com/finch-bank/finch/internal/cli"

func main() {
	cli.Execute()
}
