package main

import "github.com/nvalenz/libreria/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
