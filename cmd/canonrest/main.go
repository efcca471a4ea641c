// Command canonrest runs the canonrest resource service and its client
// commands.
package main

import "github.com/getmockd/canonrest/pkg/cli"

func main() {
	cli.Execute()
}
