package main

import "tonefix/cmd"

func main() {
	cmd.Execute()
}
