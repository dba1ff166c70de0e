package main

import "github.com/brentkao/roomcoord/internal/cli"

func main() {
	cli.Execute()
}
