package fpo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/krishidhan/sahayak/components/geo"
)

// LoadWorkbook reads organizations from a workbook on disk.
func LoadWorkbook(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := ReadWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ReadWorkbook parses xlsx content. The first sheet must start with a
// header row naming at least a name column; rows without a name and
// state are dropped. Coordinate columns are optional, and entries with
// unparseable coordinates keep the zero point so they still serve
// by-state lookups.
func ReadWorkbook(r io.Reader) ([]Entry, error) {
	doc, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	sheets := doc.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := doc.Rows(sheets[0])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		cols    map[string]int
		entries []Entry
	)
	for rows.Next() {
		row, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		if cols == nil {
			cols = headerIndex(row)
			if _, ok := cols["name"]; !ok {
				return nil, errors.New("workbook header row lacks a name column")
			}
			continue
		}
		e := Entry{
			Name:     cellValue(row, cols, "name"),
			District: cellValue(row, cols, "district"),
			State:    cellValue(row, cols, "state"),
		}
		if e.Name == "" || e.State == "" {
			continue
		}
		e.Point = geo.Point{
			Lat: cellFloat(row, cols, "lat"),
			Lon: cellFloat(row, cols, "lon"),
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func headerIndex(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	for i, h := range row {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "fpo name", "organization":
			cols["name"] = i
		case "district":
			cols["district"] = i
		case "state":
			cols["state"] = i
		case "lat", "latitude":
			cols["lat"] = i
		case "lon", "lng", "longitude":
			cols["lon"] = i
		}
	}
	return cols
}

func cellValue(row []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellFloat(row []string, cols map[string]int, key string) float64 {
	v, err := strconv.ParseFloat(cellValue(row, cols, key), 64)
	if err != nil {
		return 0
	}
	return v
}
