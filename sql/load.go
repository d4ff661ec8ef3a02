package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed timelines.sql
var timelinesSQL string

//go:embed timeline_nodes.sql
var nodesSQL string

//go:embed timeline_edges.sql
var edgesSQL string

// Function lists for verification
var TimelinesFunctions = []string{
	"init_timelines",
	"insert_timeline",
	"select_timeline",
	"select_timelines",
	"delete_timeline",
}

var NodesFunctions = []string{
	"init_timeline_nodes",
	"insert_timeline_node",
	"select_timeline_nodes",
	"select_timeline_nodes_by_entity",
	"delete_timeline_nodes",
}

var EdgesFunctions = []string{
	"init_timeline_edges",
	"insert_timeline_edge",
	"select_timeline_edges",
	"select_timeline_edges_from_node",
	"select_timeline_edges_to_node",
	"delete_timeline_edges",
}

// Init creates the shared database types
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database types initialized successfully")
	return nil
}

// LoadTimelinesSql loads timeline-related SQL functions
func LoadTimelinesSql(db *sql.DB, force bool) error {
	return loadSql(db, "timelines", timelinesSQL, TimelinesFunctions, force)
}

// LoadNodesSql loads timeline node SQL functions
func LoadNodesSql(db *sql.DB, force bool) error {
	return loadSql(db, "timeline nodes", nodesSQL, NodesFunctions, force)
}

// LoadEdgesSql loads timeline edge SQL functions
func LoadEdgesSql(db *sql.DB, force bool) error {
	return loadSql(db, "timeline edges", edgesSQL, EdgesFunctions, force)
}

// LoadAllSql loads all SQL functions.
// Timelines are loaded first because nodes and edges reference them.
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadTimelinesSql(db, force); err != nil {
		return err
	}

	if err := LoadNodesSql(db, force); err != nil {
		return err
	}

	if err := LoadEdgesSql(db, force); err != nil {
		return err
	}

	return nil
}

// loadSql executes script unless force is false and all functions already exist.
// It verifies afterwards that every function was created.
func loadSql(db *sql.DB, name string, script string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(script)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
