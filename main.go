package main

import "provision/cmd"

func main() {
	cmd.Execute()
}
