package main

import (
	"examly/config"
	"examly/database"
	"examly/lifecycle"
	"log"
	"time"
)

// One-shot sweep over every exam whose status no longer matches its end
// time. Meant for a cron entry on deployments that keep the in-process
// scheduler disabled.
func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	changed, err := lifecycle.ReconcileAll(database.Database.Db, time.Now().UTC())
	if err != nil {
		log.Fatalf("Failed to reconcile exam statuses: %v", err)
	}

	log.Printf("Exam status sweep complete, %d exam(s) updated", changed)
}
