package main

import (
	"github.com/sidkik/tagmirror/cmd"
	"github.com/sidkik/tagmirror/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
