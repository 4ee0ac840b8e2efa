package main

import "github.com/mlbahja/01-blog/cmd/blogservice/cmd"

func main() {
	cmd.Execute()
}
