package main

import "courtbook-service/internal/cli"

func main() {
	cli.Execute()
}
