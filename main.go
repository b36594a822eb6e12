package main

import "github.com/afumu/watrace/cmd"

func main() {
	cmd.Execute()
}
