package main

import (
	"github.com/sidkik/addonsync/cmd"
	"github.com/sidkik/addonsync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
