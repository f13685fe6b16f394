package main

import "github.com/andrescamacho/portscheduler-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
