package main

import "github.com/obarros/lojinha/cmd"

func main() {
	cmd.Start()
}
