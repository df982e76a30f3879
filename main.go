package main

import "github.com/frahmantamala/shiftboard/cmd"

func main() {
	cmd.Execute()
}
