package main

import "github.com/KaramelBytes/fairloom-cli/cmd"

func main() {
	cmd.Execute()
}
