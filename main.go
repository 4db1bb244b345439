package main

import "github.com/maktabdl/maktabdl/cmd"

func main() {
	cmd.Execute()
}
