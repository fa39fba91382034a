package main

import "github.com/Brownie44l1/classify-ui/internal/cli"

func main() {
	cli.Execute()
}
