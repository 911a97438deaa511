package main

import (
	"log"

	"github.com/devanderson/media-gallery/cmd"
	"github.com/devanderson/media-gallery/config"
)

func main() {
	log.Printf("media gallery %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
