package main

import (
	"github.com/complyscan/complyscan/internal/cmd"
	"github.com/complyscan/complyscan/internal/cmd/common"
)

func main() {
	common.Run(cmd.NewRootCmd())
}
