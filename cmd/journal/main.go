package main

import (
	"log"

	"github.com/Snehagupta1907/monad-journal/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ journal failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ journal stopped with error: %v", err)
	}
}
