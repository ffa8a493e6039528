package main

import "progressboard/cli"

func main() {
	cli.Execute()
}
