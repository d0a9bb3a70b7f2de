package main

import (
	"log"

	"github.com/ByLCY/chronicle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("chronicle: %v", err)
	}
}
