package model

import (
	"os"
	"path/filepath"
	"strings"
)

// Document is a source text a timeline is generated from
type Document struct {
	Title    string   `json:"title"`
	Source   string   `json:"source,omitempty"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// NewDocumentFromFile reads a plain text file and creates a Document with its content.
// The title defaults to the filename without extension, and source to the file path.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	if title == "" {
		title = filename
	}

	return &Document{
		Title:    title,
		Source:   filePath,
		Content:  string(content),
		Metadata: metadata,
	}, nil
}
