package main

import "github.com/fakeyudi/jumplab/cmd"

func main() {
	cmd.Execute()
}
