package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/siherrmann/timegrapher"
)

const sampleContent = `明治5年、新橋と横浜の間に日本初の鉄道が開業した。
同年、鉄道の運賃が定められた。
1964年10月1日、東海道新幹線が東京駅と新大阪駅の間で開業した。
そのため、東京と大阪の移動時間は大幅に短縮された。
昭和62年4月1日、国鉄は分割民営化され、JR各社が発足した。
令和6年3月16日、北陸新幹線が敦賀駅まで延伸された。`

func main() {
	// Timeline only
	items := timegrapher.GenerateTimeline(sampleContent, 150, nil)
	fmt.Printf("Extracted %d events\n", len(items))
	for _, item := range items {
		date := item.DateText
		if item.DateISO != nil {
			date = *item.DateISO
		}
		fmt.Printf("  %-12s %-8s %.2f  %s\n", date, item.Category, item.Importance, item.Title)
		if len(item.People) > 0 || len(item.Locations) > 0 {
			fmt.Printf("  %-12s people=%v locations=%v\n", "", item.People, item.Locations)
		}
	}

	// Relationship graph
	dag := timegrapher.BuildTimelineDAG(sampleContent, 0.3, 500)
	fmt.Printf("\nGraph %q: %d nodes, %d edges, longest path %d\n",
		dag.Title, dag.Stats.NodeCount, dag.Stats.EdgeCount, dag.Stats.MaxPathLength)
	for _, edge := range dag.Edges {
		source, target := dag.Node(edge.SourceID), dag.Node(edge.TargetID)
		fmt.Printf("  %s -[%s %.3f]-> %s\n", source.Title, edge.RelationType, edge.RelationStrength, target.Title)
		fmt.Printf("    %s\n", edge.Reasoning)
	}

	// Topological order and paths between the first and last event
	sorted := timegrapher.TopologicalSort(dag.Nodes, dag.Edges)
	titles := make([]string, 0, len(sorted))
	for _, node := range sorted {
		titles = append(titles, node.Title)
	}
	fmt.Printf("\nTopological order: %s\n", strings.Join(titles, " → "))

	if len(dag.Nodes) > 1 {
		first, last := dag.Nodes[0], dag.Nodes[len(dag.Nodes)-1]
		paths := timegrapher.FindPaths(first.ID, last.ID, dag.Edges, 10)
		fmt.Printf("Paths from %q to %q: %d\n", first.Title, last.Title, len(paths))
	}

	// JSON output as consumed by other services
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	fmt.Println("\nStats:")
	if err := encoder.Encode(dag.Stats); err != nil {
		log.Fatalf("Failed to encode stats: %v", err)
	}
}
