package main

import "github.com/cocogitto-go/cocogitto/cmd"

func main() {
	cmd.Execute()
}
