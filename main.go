package main

import "github.com/nextlevelbuilder/pyrunner/cmd"

func main() {
	cmd.Execute()
}
