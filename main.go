package main

import "github.com/itsmostafa/codegrab/cmd"

func main() {
	cmd.Execute()
}
