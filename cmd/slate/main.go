package main

import (
	"github.com/slatecanvas/slate/cmd/slate/cmd"
)

func main() {
	cmd.Execute()
}
