package main

import "github.com/tristendillon/prefgen/cmd"

func main() {
	cmd.Execute()
}
