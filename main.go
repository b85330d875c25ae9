package main

import "socialclient/cmd"

func main() {
	cmd.Execute()
}
