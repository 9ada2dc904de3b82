package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"golxlybridge/bridge"
	"golxlybridge/config"
	"golxlybridge/records"
	"golxlybridge/workers"
)

func main() {
	log.Print("Starting LxLy bridge-and-call service")

	f, err := os.OpenFile(fmt.Sprintf("logs/log_%s.txt", time.Now().Format("2006-01-02")), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file for writing: %v", err)
	}
	defer f.Close()

	log.SetOutput(f)

	config.Init()

	store := records.NewRedisStore()

	service := bridge.DefaultService(store)

	// background refresh of non-terminal bridge records
	go workers.Worker_refreshStatus(service)

	// API serving HTTP server doubles as the main worker thread
	workers.Worker_HTTP(service)
}
