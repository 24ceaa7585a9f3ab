package main

import "github.com/chainkt/chainkt/cmd/chainkt/commands"

func main() {
	commands.Execute()
}
