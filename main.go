package main

import "github.com/intune-audio/intune/cmd"

func main() {
	cmd.Execute()
}
