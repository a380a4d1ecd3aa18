// Command arkhamctl is a command line client for the Arkham companion API
package main

import "github.com/mcoot/arkham-companion/internal/cli"

func main() {
	cli.Execute()
}
