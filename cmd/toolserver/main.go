package main

import (
	"log"
	"os"

	"opshub/internal/config"
	"opshub/internal/toolserver"
	"opshub/internal/upstream/connecteam"
	"opshub/internal/upstream/doorloop"
)

// The tool server is spawned as a subprocess by the aggregation service.
// It speaks MCP over stdio; stdout belongs to the protocol, so all logging
// goes to stderr.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: toolserver <doorloop|connecteam>")
	}

	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch os.Args[1] {
	case "doorloop":
		client := doorloop.NewClient(cfg.DoorloopAPIKey, cfg.DoorloopAPIBase)
		if err := toolserver.Serve(toolserver.NewDoorloopServer(client)); err != nil {
			log.Fatalf("Tool server error: %v", err)
		}
	case "connecteam":
		client := connecteam.NewClient(cfg.ConnecteamAPIKey, cfg.ConnecteamAPIBase, cfg.ConnecteamTaskboard)
		if err := toolserver.Serve(toolserver.NewConnecteamServer(client)); err != nil {
			log.Fatalf("Tool server error: %v", err)
		}
	default:
		log.Fatalf("Unknown tool server %q (want doorloop or connecteam)", os.Args[1])
	}
}
