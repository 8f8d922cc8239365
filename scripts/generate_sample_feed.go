package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// generateSampleFeed writes a values-API shaped JSON file that can be served
// by any static file server to stand in for the spreadsheet feed during
// local development.
func main() {
	dataDir := "data"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	values := [][]string{
		{"Timestamp", "Student Number", "Student Name", "Section", "Email", "Payment Mode", "Items", "Price", "GCash Reference"},
		{"2024-03-01 09:15", "2021-00123", "Maria Santos", "BSIT 2A", "maria@example.edu", "GCash", "Shirt (2x), Mug", "350", "REF-7788"},
		{"2024-03-01 10:40", "2021-00456", "Jose Cruz", "BSIT 2B", "jose@example.edu", "Cash", "Lanyard", "80", ""},
		{"2024-03-02 08:05", "2021-00789", "Ana Reyes", "BSCS 3A", "ana@example.edu", "GCash", "Tote Bag, Pen (3x)", "210", "REF-9911"},
		{"2024-03-02 14:20", "2021-00123", "Maria Santos", "BSIT 2A", "maria@example.edu", "GCash", "Sticker Pack", "50", "REF-8002"},
		{"2024-03-03 11:55", "2021-01010", "Leo Tan", "BSIT 1C", "leo@example.edu", "Cash", "Hoodie", "650", ""},
	}

	payload := map[string]interface{}{"values": values}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode feed: %v", err)
	}

	path := filepath.Join(dataDir, "sample_feed.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}

	log.Printf("Wrote %d feed rows to %s", len(values)-1, path)
}
