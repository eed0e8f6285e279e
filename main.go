package main

import "github.com/samwightt/gqlbind/cmd"

func main() {
	cmd.Execute()
}
