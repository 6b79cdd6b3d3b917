// Package report persists and summarizes sequences of BB84 run
// results: CSV export with a fixed schema, lossless enough to
// reconstruct every record, and grouped summary statistics.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/FedericoQuartieri/QiskitFallFest-Hackathon-2025/bb84"
)

// A Record is one protocol run's result tagged with when it executed.
// For runs the harness could not execute at all (Status == StatusError)
// Error carries the failure text.
type Record struct {
	Timestamp time.Time
	bb84.Result
	Error string
}

// Columns is the CSV schema, one row per run.
var Columns = []string{
	"timestamp", "n", "delta", "tolerance", "errors", "backend", "repeat",
	"status", "qber", "total_qubits", "sifted_len", "key_length", "reason",
}

// WriteCSV writes records to path under the Columns schema. A path
// ending in .zst is transparently zstd-compressed, which matters for
// large sweeps.
func WriteCSV(path string, records []Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var w io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		zw, zerr := zstd.NewWriter(f)
		if zerr != nil {
			return fmt.Errorf("opening zstd writer: %w", zerr)
		}
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = zw
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads back a file written by WriteCSV.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reading %s: missing header", path)
	}
	var records []Record
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("parsing %s row %d: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r Record) row() []string {
	qber := ""
	if r.HasQBER {
		qber = formatFloat(r.QBER)
	}
	keyLen := ""
	if r.Status == bb84.StatusSuccess {
		keyLen = strconv.Itoa(r.KeyLength)
	}
	reason := string(r.Reason)
	if r.Status == bb84.StatusError {
		reason = r.Error
	}
	return []string{
		r.Timestamp.Format(time.RFC3339Nano),
		strconv.Itoa(r.N),
		formatFloat(r.Delta),
		formatFloat(r.Tolerance),
		formatFloat(r.Errors),
		r.Backend,
		strconv.Itoa(r.Repeat),
		string(r.Status),
		qber,
		strconv.Itoa(r.TotalQubits),
		strconv.Itoa(r.SiftedLen),
		keyLen,
		reason,
	}
}

func parseRow(row []string) (Record, error) {
	if len(row) != len(Columns) {
		return Record{}, fmt.Errorf("got %d fields, want %d", len(row), len(Columns))
	}
	var rec Record
	var err error
	if rec.Timestamp, err = time.Parse(time.RFC3339Nano, row[0]); err != nil {
		return Record{}, err
	}
	if rec.N, err = strconv.Atoi(row[1]); err != nil {
		return Record{}, err
	}
	if rec.Delta, err = strconv.ParseFloat(row[2], 64); err != nil {
		return Record{}, err
	}
	if rec.Tolerance, err = strconv.ParseFloat(row[3], 64); err != nil {
		return Record{}, err
	}
	if rec.Errors, err = strconv.ParseFloat(row[4], 64); err != nil {
		return Record{}, err
	}
	rec.Backend = row[5]
	if rec.Repeat, err = strconv.Atoi(row[6]); err != nil {
		return Record{}, err
	}
	rec.Status = bb84.Status(row[7])
	if row[8] != "" {
		if rec.QBER, err = strconv.ParseFloat(row[8], 64); err != nil {
			return Record{}, err
		}
		rec.HasQBER = true
	}
	if rec.TotalQubits, err = strconv.Atoi(row[9]); err != nil {
		return Record{}, err
	}
	if rec.SiftedLen, err = strconv.Atoi(row[10]); err != nil {
		return Record{}, err
	}
	if row[11] != "" {
		if rec.KeyLength, err = strconv.Atoi(row[11]); err != nil {
			return Record{}, err
		}
	}
	if rec.Status == bb84.StatusError {
		rec.Error = row[12]
	} else {
		rec.Reason = bb84.AbortReason(row[12])
	}
	return rec, nil
}

// formatFloat renders f with the minimal digits that parse back to
// exactly f.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
