package main

import "drone-detect/cmd"

func main() {
	cmd.Execute()
}
