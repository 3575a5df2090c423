package main

import "github.com/mechkit/mechkit/cmd"

func main() {
	cmd.Execute()
}
