package main

import "giftvault/internal/cli"

func main() {
	cli.Execute()
}
