package main

import "effects-studio/internal/cli"

func main() {
	cli.Execute()
}
