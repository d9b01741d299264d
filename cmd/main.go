package main

import (
	"keywell/cmd/keywell"
)

func main() {
	keywell.Execute()
}
