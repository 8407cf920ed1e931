package main

import "github.com/masmgr/changever/cmd"

func main() {
	cmd.Run()
}
