package main

import "github.com/jsphweid/chordtext/cmd"

func main() {
	cmd.Execute()
}
