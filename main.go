package main

import "treeval/cli"

func main() {
	cli.Execute()
}
