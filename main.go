package main

import "github.com/croft-build/croft/cmd"

func main() {
	cmd.Execute()
}
