package main

import (
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/infogrep/infogrep/cmd/infogrep"
)

func main() {
	_, _ = maxprocs.Set()
	infogrep.Execute()
}
