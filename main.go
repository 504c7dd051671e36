package main

import "github.com/saadjs/fitfuel/cmd/fitfuel"

func main() {
	fitfuel.Execute()
}
