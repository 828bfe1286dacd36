package callbacks

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Frame is a column table of per-epoch scores. Each series contributes one
// named column; epochs a series did not record are NaN in its column.
type Frame struct {
	names  []string
	series map[string]seriesData
}

type seriesData struct {
	epochs []int
	values []float64
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{series: make(map[string]seriesData)}
}

// AddSeries adds a named score series. epochs and values must be parallel.
func (f *Frame) AddSeries(name string, epochs []int, values []float64) error {
	if len(epochs) != len(values) {
		return fmt.Errorf("series %q: %d epochs vs %d values", name, len(epochs), len(values))
	}
	if _, exists := f.series[name]; exists {
		return fmt.Errorf("series %q already added", name)
	}
	f.names = append(f.names, name)
	f.series[name] = seriesData{
		epochs: append([]int(nil), epochs...),
		values: append([]float64(nil), values...),
	}
	return nil
}

// Columns returns the series names in insertion order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Epochs returns the sorted union of all series' epochs.
func (f *Frame) Epochs() []int {
	seen := make(map[int]bool)
	var out []int
	for _, s := range f.series {
		for _, e := range s.epochs {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Ints(out)
	return out
}

// Column returns the named series aligned to Epochs(), with NaN at epochs
// the series did not record.
func (f *Frame) Column(name string) ([]float64, error) {
	s, ok := f.series[name]
	if !ok {
		return nil, fmt.Errorf("no series %q", name)
	}
	byEpoch := make(map[int]float64, len(s.epochs))
	for i, e := range s.epochs {
		byEpoch[e] = s.values[i]
	}
	epochs := f.Epochs()
	out := make([]float64, len(epochs))
	for i, e := range epochs {
		if v, ok := byEpoch[e]; ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// Render writes the frame as a borderless table with an epoch column.
func (f *Frame) Render(w io.Writer) error {
	epochs := f.Epochs()
	cols := make([][]float64, len(f.names))
	for i, name := range f.names {
		c, err := f.Column(name)
		if err != nil {
			return err
		}
		cols[i] = c
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"EPOCH"}, f.names...))
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetRowLine(false)
	table.SetColumnSeparator("")
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetBorder(false)

	for i, e := range epochs {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.Itoa(e))
		for _, c := range cols {
			if math.IsNaN(c[i]) {
				row = append(row, "")
			} else {
				row = append(row, strconv.FormatFloat(c[i], 'g', 6, 64))
			}
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

// String renders the frame to a string.
func (f *Frame) String() string {
	var sb strings.Builder
	if err := f.Render(&sb); err != nil {
		return fmt.Sprintf("frame error: %v", err)
	}
	return sb.String()
}
