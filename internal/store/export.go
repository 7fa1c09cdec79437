package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/gramsim/gram/internal/sim"
	"github.com/gramsim/gram/internal/sweep"
)

// Row is one flattened result triple.
type Row struct {
	Permanent      int
	Removed        int
	Condition      string
	ThresholdError float64
}

// Flatten converts results to rows sorted by pair then condition label,
// giving exports a stable order.
func Flatten(results sweep.Results) []Row {
	var rows []Row
	for key, set := range results {
		for cond, c := range set {
			rows = append(rows, Row{
				Permanent:      key.Permanent,
				Removed:        key.Removed,
				Condition:      cond,
				ThresholdError: c.ThresholdError,
			})
		}
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Permanent != rows[b].Permanent {
			return rows[a].Permanent < rows[b].Permanent
		}
		if rows[a].Removed != rows[b].Removed {
			return rows[a].Removed < rows[b].Removed
		}
		return rows[a].Condition < rows[b].Condition
	})
	return rows
}

// WriteCSV writes the flattened triples as CSV with a header row.
// Floats use the shortest representation that round-trips exactly.
func WriteCSV(w io.Writer, results sweep.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"permanent", "removed", "condition", "threshold_error"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range Flatten(results) {
		record := []string{
			strconv.Itoa(row.Permanent),
			strconv.Itoa(row.Removed),
			row.Condition,
			strconv.FormatFloat(row.ThresholdError, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// arrowSchema describes the columnar layout of exported results.
var arrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "permanent", Type: arrow.PrimitiveTypes.Int32},
	{Name: "removed", Type: arrow.PrimitiveTypes.Int32},
	{Name: "condition", Type: arrow.BinaryTypes.String},
	{Name: "threshold_error", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteArrow writes the flattened triples as a single-record Arrow IPC
// stream for downstream columnar analysis.
func WriteArrow(w io.Writer, results sweep.Results) error {
	builder := array.NewRecordBuilder(memory.NewGoAllocator(), arrowSchema)
	defer builder.Release()

	for _, row := range Flatten(results) {
		builder.Field(0).(*array.Int32Builder).Append(int32(row.Permanent))
		builder.Field(1).(*array.Int32Builder).Append(int32(row.Removed))
		builder.Field(2).(*array.StringBuilder).Append(row.Condition)
		builder.Field(3).(*array.Float64Builder).Append(row.ThresholdError)
	}

	record := builder.NewRecord()
	defer record.Release()

	sw := ipc.NewWriter(w, ipc.WithSchema(arrowSchema))
	if err := sw.Write(record); err != nil {
		sw.Close()
		return fmt.Errorf("writing Arrow record: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("closing Arrow stream: %w", err)
	}
	return nil
}

// ReadArrow loads results from an Arrow IPC stream written by WriteArrow.
func ReadArrow(r io.Reader) (sweep.Results, error) {
	sr, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("opening Arrow stream: %w", err)
	}
	defer sr.Release()

	results := make(sweep.Results)
	for sr.Next() {
		record := sr.Record()

		permanent := record.Column(0).(*array.Int32)
		removed := record.Column(1).(*array.Int32)
		condition := record.Column(2).(*array.String)
		threshold := record.Column(3).(*array.Float64)

		for row := 0; row < int(record.NumRows()); row++ {
			key := sweep.PairKey{
				Permanent: int(permanent.Value(row)),
				Removed:   int(removed.Value(row)),
			}
			if !key.Valid() {
				return nil, fmt.Errorf("arrow pair (%d,%d) out of range", key.Permanent, key.Removed)
			}
			set, ok := results[key]
			if !ok {
				set = make(sim.ComparisonSet)
				results[key] = set
			}
			set[condition.Value(row)] = sim.Comparison{ThresholdError: threshold.Value(row)}
		}
	}
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("reading Arrow stream: %w", err)
	}
	return results, nil
}
