package main

import "gomarketplace/cmd"

func main() {
	cmd.Execute()
}
