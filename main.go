package main

import "github.com/rivalspatch/cmd"

func main() {
	cmd.Execute()
}
