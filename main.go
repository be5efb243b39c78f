package main

import "github.com/watercourse/gosv/cmd"

func main() {
	cmd.Execute()
}
