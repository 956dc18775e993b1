package main

import "github.com/onrus/powermax-logins/internal/cli"

func main() {
	cli.Execute()
}
