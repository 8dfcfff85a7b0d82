package main

import "github.com/difylang/dbagent/cmd"

func main() {
	cmd.Execute()
}
