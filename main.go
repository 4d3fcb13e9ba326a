package main

import "bpkg/cmd"

var Version = "dev"

func main() {
	cmd.Execute(Version)
}
