package main

import "github.com/fmmtools/fmodman/cmd"

func main() {
	cmd.Execute()
}
