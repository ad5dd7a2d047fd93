package main

import "github.com/veilscan/veilscan/src/cli"

func main() {
	cli.Execute()
}
