package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ExportResults appends a session's results to a text file
func ExportResults(s *Session, filename string) error {
	results := s.Results()

	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Check if file exists to add spacing between sessions
	fileExists := false
	if _, err := os.Stat(filename); err == nil {
		fileExists = true
	}

	// Open file in append mode
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	if fileExists {
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Session %s\n", s.Code))
	sb.WriteString(fmt.Sprintf("Finished: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	for i, r := range results {
		resp := "null"
		if r.Response != nil {
			resp = fmt.Sprintf("%q", *r.Response)
		}
		rt := "null"
		if r.RT != nil {
			rt = strconv.Itoa(*r.RT)
		}
		sb.WriteString(fmt.Sprintf("Trial %d: stimulus=%q response=%s rt=%s\n", i+1, r.Stimulus, resp, rt))
	}

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}
