package main

import (
	"github.com/eippbx/phoneDTMF/cmd"
	"github.com/eippbx/phoneDTMF/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
