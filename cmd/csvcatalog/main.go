package main

import "github.com/tomashevich/csvcatalog/cmd/csvcatalog/cmd"

func main() {
	cmd.Execute()
}
