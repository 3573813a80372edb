package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"dsa_arena/internal/domain/model"
)

// Row is one question line of a sheet export.
type Row struct {
	Topic      string
	Title      string
	Link       string
	Solution   string
	Difficulty model.Difficulty
}

var requiredColumns = []string{"Topic", "Problem Name", "Problem Link", "Solution Link", "Difficulty"}

// ParseTSV reads a tab separated export with a header row naming at least the required columns.
// Column order is free. Rows without a topic or problem name are skipped.
func ParseTSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty TSV file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := Row{
			Topic:      field(record, "Topic"),
			Title:      field(record, "Problem Name"),
			Link:       field(record, "Problem Link"),
			Solution:   field(record, "Solution Link"),
			Difficulty: model.ParseDifficulty(field(record, "Difficulty")),
		}
		if row.Topic == "" || row.Title == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PlatformFromLink names the judge a problem link points at.
func PlatformFromLink(link string) string {
	switch {
	case strings.Contains(link, "leetcode.com"):
		return "leetcode"
	case strings.Contains(link, "geeksforgeeks.org"):
		return "geeksforgeeks"
	case strings.Contains(link, "interviewbit.com"):
		return "interviewbit"
	default:
		return "misc"
	}
}
