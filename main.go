package main

import "kingface-client/cmd"

func main() {
	cmd.Execute()
}
