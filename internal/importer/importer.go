// Package importer reads staff rosters exported from spreadsheets.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	enc "github.com/MrJamesThe3rd/billroom/internal/encoding"
	"github.com/MrJamesThe3rd/billroom/internal/staff"
)

var ErrNoHeader = errors.New("no roster header found: expected Name, Role and Room columns")

// Column aliases accepted in the header row, compared case-insensitively.
var (
	nameCols  = []string{"name", "employee", "employee name"}
	roleCols  = []string{"role", "designation"}
	roomCols  = []string{"room", "room number", "room no", "room no."}
	imageCols = []string{"image", "image url", "photo"}
)

type columns struct {
	name, role, room, image int
}

// ParseRoster reads a semicolon separated roster in any common encoding.
// Rows before the header are ignored, as are blank rows and extra columns.
func ParseRoster(r io.Reader) ([]staff.CreateParams, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv (%s): %w", charset, err)
	}

	cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, ErrNoHeader
	}

	var out []staff.CreateParams

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		if blank(row) {
			continue
		}

		p := staff.CreateParams{
			Name:       cell(row, cols.name),
			Role:       cell(row, cols.role),
			RoomNumber: cell(row, cols.room),
			ImageURL:   cell(row, cols.image),
		}

		switch {
		case p.Name == "":
			return nil, fmt.Errorf("row %d: missing name", rowNum)
		case p.Role == "":
			return nil, fmt.Errorf("row %d: missing role", rowNum)
		case p.RoomNumber == "":
			return nil, fmt.Errorf("row %d: missing room", rowNum)
		}

		out = append(out, p)
	}

	return out, nil
}

func findHeader(rows [][]string) (columns, int, bool) {
	for idx, row := range rows {
		cols := columns{name: -1, role: -1, room: -1, image: -1}

		for i, c := range row {
			switch h := strings.ToLower(strings.TrimSpace(c)); {
			case slices.Contains(nameCols, h):
				cols.name = i
			case slices.Contains(roleCols, h):
				cols.role = i
			case slices.Contains(roomCols, h):
				cols.room = i
			case slices.Contains(imageCols, h):
				cols.image = i
			}
		}

		if cols.name >= 0 && cols.role >= 0 && cols.room >= 0 {
			return cols, idx, true
		}
	}

	return columns{}, 0, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
