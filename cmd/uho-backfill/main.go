package main

import (
	"github.com/zhivkoto/uho-indexing/cmd"
)

func main() {
	cmd.Execute()
}
