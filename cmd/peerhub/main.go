// Command peerhub serves the skill-exchange API and realtime chat gateway.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/peerhub/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
