// Command cardperks tracks hotel elite nights and credit card benefits.
package main

import "github.com/theirongolddev/cardperks/cmd"

func main() {
	cmd.Execute()
}
