package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/WessleyAI/wessley-listings/engine/vehicle"
)

type column struct {
	title string
	width int
	value func(vehicle.Vehicle) string
}

var columns = []column{
	{"SOURCE", 10, func(v vehicle.Vehicle) string { return string(v.Meta.Source) }},
	{"PAGE", 4, func(v vehicle.Vehicle) string { return strconv.Itoa(v.Meta.PageID) }},
	{"TITLE", 40, func(v vehicle.Vehicle) string { return v.Title }},
	{"PRICE", 14, func(v vehicle.Vehicle) string { return v.Price.String() }},
	{"MILEAGE", 9, func(v vehicle.Vehicle) string { return optInt(v.Mileage) }},
	{"YEAR", 4, func(v vehicle.Vehicle) string { return optInt(v.Extra.Year) }},
	{"LOCATION", 16, func(v vehicle.Vehicle) string { return v.Owner.Location }},
	{"DATE", 10, func(v vehicle.Vehicle) string {
		if v.Date == nil {
			return "-"
		}
		return v.Date.Format("2006-01-02")
	}},
}

func optInt(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}

// cell collapses whitespace, then truncates or pads s to exactly w
// terminal columns.
func cell(s string, w int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}

func writeTable(w io.Writer, result vehicle.ScrapeResult) error {
	row := func(vals []string) error {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cell(vals[i], c.width)
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
		return err
	}

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.title
	}
	if err := row(header); err != nil {
		return err
	}
	for _, v := range result.Results {
		vals := make([]string, len(columns))
		for i, c := range columns {
			vals[i] = c.value(v)
		}
		if err := row(vals); err != nil {
			return err
		}
	}

	var tags []string
	for _, s := range result.Sources {
		tags = append(tags, fmt.Sprintf("%s=%d", s.Source, s.Count))
	}
	_, err := fmt.Fprintf(w, "\n%d listings (%s) at %s\n",
		result.Count, strings.Join(tags, ", "), result.Timestamp.Format("2006-01-02 15:04:05Z07:00"))
	return err
}
