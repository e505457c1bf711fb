package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/unireserva/unireserva/internal/stubserver"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "listen address")
	storePath := flag.String("store", "rooms.json", "path of the JSON reservation snapshot (empty for in-memory only)")
	roomCount := flag.Int("rooms", 10, "number of rooms to seed when the snapshot is empty")
	flag.Parse()

	roomIDs := make([]string, 0, *roomCount)
	for i := 0; i < *roomCount; i++ {
		roomIDs = append(roomIDs, fmt.Sprintf("sala-%03d", 101+i))
	}

	store := stubserver.NewStore(*storePath, roomIDs...)
	server := stubserver.NewServer(store)

	log.Infof("Starting stub reservation authority on %s (%s)", *addr, store)
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		log.Fatal(err)
	}
}
