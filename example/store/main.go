package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/siherrmann/timegrapher"
	"github.com/siherrmann/timegrapher/helper"
	"github.com/siherrmann/timegrapher/model"
)

var sampleDocuments = []*model.Document{
	{
		Title:   "鉄道の歴史",
		Source:  "sample_railway",
		Content: "明治5年、新橋と横浜の間に日本初の鉄道が開業した。1964年10月1日、東海道新幹線が東京駅と新大阪駅の間で開業した。そのため、東京と大阪の移動時間は大幅に短縮された。",
	},
	{
		Title:   "オリンピック",
		Source:  "sample_olympics",
		Content: "1964年10月10日、東京でオリンピックが開幕した。2013年9月7日、2020年の大会の開催地が東京に決定した。令和3年7月23日、延期された東京大会が開幕した。",
		Metadata: model.Metadata{
			"topic": "sports",
		},
	},
}

// Usage: store [file.txt ...]
// Without arguments the sample documents are stored.
func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	tg, err := timegrapher.NewTimegrapher(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create timegrapher: %v", err)
	}
	defer tg.Close()

	docs := sampleDocuments
	if len(os.Args) > 1 {
		docs = nil
		for _, path := range os.Args[1:] {
			doc, err := model.NewDocumentFromFile(path, model.Metadata{"file": path})
			if err != nil {
				log.Fatalf("Failed to read %s: %v", path, err)
			}
			docs = append(docs, doc)
		}
	}

	fmt.Printf("Processing %d documents...\n", len(docs))
	dags, err := tg.ProcessDocuments(ctx, docs, model.DefaultDAGConfig(), 4)
	if err != nil {
		log.Fatalf("Failed to process documents: %v", err)
	}
	for _, dag := range dags {
		fmt.Printf("  %s: %d events, %d relations (id %s)\n", dag.Title, dag.Stats.NodeCount, dag.Stats.EdgeCount, dag.ID)
	}

	// List stored timelines
	timelines, err := tg.SelectTimelines(ctx, nil, 10)
	if err != nil {
		log.Fatalf("Failed to list timelines: %v", err)
	}
	fmt.Printf("\nStored timelines: %d\n", len(timelines))

	// Load one timeline with its graph
	if len(dags) > 0 {
		stored, err := tg.SelectTimeline(ctx, dags[0].ID)
		if err != nil {
			log.Fatalf("Failed to load timeline: %v", err)
		}
		fmt.Printf("\n%s\n", stored.Title)
		for _, node := range stored.Nodes {
			fmt.Printf("  [%s] %s\n", node.DateText, node.Title)
		}
	}

	// Events across all timelines that mention a place
	mentions, err := tg.SelectEntityMentions(ctx, "東京", 10)
	if err != nil {
		log.Fatalf("Failed to search mentions: %v", err)
	}
	fmt.Printf("\nEvents mentioning 東京: %d\n", len(mentions))
	for _, mention := range mentions {
		fmt.Printf("  %s (timeline %s)\n", mention.Node.Title, mention.TimelineID)
	}
}
