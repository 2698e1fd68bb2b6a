package main

import (
	"github.com/trivago/boerewors/cmd/boerewors/commands"
)

func main() {
	commands.Execute()
}
