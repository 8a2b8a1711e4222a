package main

import "github.com/jjenkins/rulescout/cmd"

func main() {
	cmd.Execute()
}
