package main

import "github.com/MeKo-Tech/qrbatch/cmd/qrbatch/cmd"

func main() {
	cmd.Execute()
}
