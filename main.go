package main

import (
	"log"

	"github.com/luipir/geodiff-action/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
