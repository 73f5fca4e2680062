package sinks

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/lariat-data/lariat-go/core/domain"
)

// CSVSink writes tables to a CSV file. The header is written once, from the
// first table; later tables must have the same columns.
type CSVSink struct {
	mu      sync.Mutex
	file    *os.File
	writer  *csv.Writer
	columns []string
}

// NewCSVSink creates (or truncates) the file at path
func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return &CSVSink{file: file, writer: csv.NewWriter(file)}, nil
}

// Write appends the table rows
func (s *CSVSink) Write(_ context.Context, table *domain.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(table.Columns) == 0 {
		return nil
	}
	if s.columns == nil {
		if err := s.writer.Write(table.Columns); err != nil {
			return err
		}
		s.columns = slices.Clone(table.Columns)
	} else if !slices.Equal(s.columns, table.Columns) {
		return fmt.Errorf("column mismatch: file has %v, table has %v", s.columns, table.Columns)
	}

	line := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			line[i] = domain.FormatValue(v)
		}
		if err := s.writer.Write(line); err != nil {
			return err
		}
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the file
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// JSONSink writes one JSON object per row (JSON Lines)
type JSONSink struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONSink creates (or truncates) the file at path
func NewJSONSink(path string) (*JSONSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	buf := bufio.NewWriter(file)
	return &JSONSink{file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write appends one line per row
func (s *JSONSink) Write(_ context.Context, table *domain.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range table.Maps() {
		if err := s.enc.Encode(row); err != nil {
			return err
		}
	}
	return s.buf.Flush()
}

// Close flushes and closes the file
func (s *JSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
