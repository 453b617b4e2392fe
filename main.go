package main

import "github.com/KaramelBytes/popstat-cli/cmd"

func main() {
	cmd.Execute()
}
