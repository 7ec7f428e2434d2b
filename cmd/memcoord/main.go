package main

import "github.com/memcoord/memcoord/cmd/memcoord/cmd"

func main() {
	cmd.Execute()
}
