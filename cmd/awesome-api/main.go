// Command awesome-api serves the published snapshot to readers.
package main

import (
	"log"

	"github.com/allocsoc/awesome-crawler/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ awesome-api failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ awesome-api stopped with an error: %v", err)
	}
}
