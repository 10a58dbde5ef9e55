package main

import "chatterd/cmd/chatterd/cmd"

func main() {
	cmd.Execute()
}
