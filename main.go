package main

import "socios/cmd"

func main() {
	cmd.Execute()
}
