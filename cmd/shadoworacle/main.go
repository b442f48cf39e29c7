package main

import "github.com/LeJamon/goShadowOracle/internal/cli"

func main() {
	cli.Execute()
}
