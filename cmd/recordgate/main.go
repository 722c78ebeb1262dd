package main

import "github.com/recordgate/recordgate/cmd/recordgate/cmd"

func main() {
	cmd.Execute()
}
