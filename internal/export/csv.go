// Package export writes validated frames to CSV for offline analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/seagrayinc/tcdlink/internal/ccdframe"
)

// TCD1304 readout order: 32 leading dummy pixels, 3648 signal pixels, 14 trailing dummy pixels.
const (
	leadingDummies  = 32
	signalPixels    = 3648
	trailingDummies = 14
)

// PixelLabel names sample i of an n-sample frame. The sensor layout only applies to full
// 3694-sample readouts; any other geometry is labeled by index.
func PixelLabel(i, n int) string {
	if n != leadingDummies+signalPixels+trailingDummies {
		return strconv.Itoa(i)
	}
	switch {
	case i < leadingDummies:
		return "D" + strconv.Itoa(i)
	case i < leadingDummies+signalPixels:
		return "S" + strconv.Itoa(i-leadingDummies+1)
	default:
		return "D" + strconv.Itoa(i-signalPixels)
	}
}

// WriteCSV writes one row per sample with its raw and full-scale normalized value.
func WriteCSV(w io.Writer, f ccdframe.Frame, fullScale uint16) error {
	if fullScale == 0 {
		fullScale = ccdframe.DefaultSampleMax
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"pixel", "value", "normalized"}); err != nil {
		return err
	}

	n := len(f.Samples)
	for i, v := range f.Samples {
		row := []string{
			PixelLabel(i, n),
			strconv.FormatUint(uint64(v), 10),
			strconv.FormatFloat(float64(v)/float64(fullScale), 'f', 10, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// FileName is the per-frame file name used by SaveCSV.
func FileName(f ccdframe.Frame) string {
	return fmt.Sprintf("frame_%05d.csv", f.Sequence)
}

// SaveCSV writes f to dir/FileName(f) and returns the path.
func SaveCSV(dir string, f ccdframe.Frame, fullScale uint16) (string, error) {
	path := filepath.Join(dir, FileName(f))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}

	if err := WriteCSV(out, f, fullScale); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("write csv %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close csv %s: %w", path, err)
	}
	return path, nil
}
