package main

import (
	"github.com/MeKo-Tech/tilecrop/cmd/tilecrop/cmd"
)

func main() {
	cmd.Execute()
}
