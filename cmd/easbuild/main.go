package main

import "github.com/ariel-frischer/easbuild/internal/cli"

func main() {
	cli.Main()
}
