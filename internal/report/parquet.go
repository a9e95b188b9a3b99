// Package report writes per-recording artefacts for offline review: the
// aligned tilt series as Parquet and a PNG plot of it.
package report

import (
	"fmt"
	"io"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/banshee-data/sitstand.report/internal/pipeline"
)

type pitchRow struct {
	RunID    string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Index    int64   `parquet:"name=index, type=INT64"`
	TimeS    float64 `parquet:"name=time_s, type=DOUBLE"`
	PitchDeg float64 `parquet:"name=pitch_deg, type=DOUBLE"`
	Peak     bool    `parquet:"name=peak, type=BOOLEAN"`
	Valley   bool    `parquet:"name=valley, type=BOOLEAN"`
	Cycle    int32   `parquet:"name=cycle, type=INT32"` // 0 outside any cycle
}

// PitchRows flattens the aligned series of res into one row per sample.
func PitchRows(res *pipeline.ResultSummary) []pitchRow {
	seg := res.Segments
	rows := make([]pitchRow, len(seg.Time))
	id := res.ID.String()
	for i, t := range seg.Time {
		rows[i] = pitchRow{RunID: id, Index: int64(i), TimeS: t, PitchDeg: seg.Pitch[i]}
	}
	for _, p := range seg.Peaks {
		rows[p].Peak = true
	}
	for _, v := range seg.Valleys {
		rows[v].Valley = true
	}
	for k, c := range seg.Cycles {
		for i := c.Valley1; i < c.Valley3 && i < len(rows); i++ {
			rows[i].Cycle = int32(k + 1)
		}
	}
	return rows
}

// MarshalPitchParquet encodes the aligned series of res as Snappy-compressed
// Parquet.
func MarshalPitchParquet(res *pipeline.ResultSummary) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(pitchRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range PitchRows(res) {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WritePitchParquet writes MarshalPitchParquet output to w.
func WritePitchParquet(w io.Writer, res *pipeline.ResultSummary) error {
	b, err := MarshalPitchParquet(res)
	if err != nil {
		return fmt.Errorf("encode parquet: %w", err)
	}
	_, err = w.Write(b)
	return err
}
