// Command tcdsim writes a synthetic sensor stream for replay with tcdctl -replay. The stream mixes
// valid frames with the faults seen on real links: leading noise, firmware text, coincidental
// start markers, corrupted frames and truncated frames.
package main

import (
	"bufio"
	"flag"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"github.com/seagrayinc/tcdlink/internal/ccdframe"
	"github.com/seagrayinc/tcdlink/internal/logging"
)

type options struct {
	frames       int
	samples      int
	startSeq     int
	corruptEvery int
	falseEvery   int
	truncEvery   int
	seed         int64
}

func main() {
	var (
		out  = flag.String("out", "capture.bin", "output file")
		opts options
	)
	flag.IntVar(&opts.frames, "frames", 100, "number of frames to emit")
	flag.IntVar(&opts.samples, "samples", ccdframe.DefaultSampleCount, "samples per frame")
	flag.IntVar(&opts.startSeq, "start-seq", 65500, "first sequence counter")
	flag.IntVar(&opts.corruptEvery, "corrupt-every", 17, "flip one payload bit in every n-th frame (0 = never)")
	flag.IntVar(&opts.falseEvery, "false-marker-every", 11, "insert a coincidental start marker before every n-th frame (0 = never)")
	flag.IntVar(&opts.truncEvery, "truncate-every", 29, "cut every n-th frame short (0 = never)")
	flag.Int64Var(&opts.seed, "seed", 1, "random seed")
	flag.Parse()

	logging.ConfigureRuntime()

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("create output", slog.Any("error", err))
		os.Exit(1)
	}

	w := bufio.NewWriter(f)
	n, err := generate(w, opts)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		slog.Error("write stream", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("stream written", slog.String("path", *out), slog.Int("bytes", n), slog.Int("frames", opts.frames))
}

func generate(w io.Writer, opts options) (int, error) {
	r := rand.New(rand.NewSource(opts.seed))
	total := 0
	write := func(b []byte) error {
		n, err := w.Write(b)
		total += n
		return err
	}

	if err := write([]byte("OK:STARTED\n")); err != nil {
		return total, err
	}

	for i := 0; i < opts.frames; i++ {
		seq := uint16(opts.startSeq + i)
		frame := ccdframe.Encode(seq, spectrum(r, opts.samples, i))

		if every(opts.falseEvery, i) {
			// Marker followed by a count that can never match.
			bogus := []byte{'F', 'R', 'M', 'E', 0, 0, 0xFF, 0xFF}
			if err := write(bogus); err != nil {
				return total, err
			}
		}
		if every(opts.corruptEvery, i) {
			frame[ccdframe.HeaderSize+r.Intn(2*opts.samples)] ^= 1 << uint(r.Intn(8))
		}
		if every(opts.truncEvery, i) {
			frame = frame[:len(frame)/2]
		}
		if err := write(frame); err != nil {
			return total, err
		}
	}

	return total, write([]byte("OK:STOPPED\n"))
}

func every(n, i int) bool {
	return n > 0 && i > 0 && i%n == 0
}

// spectrum is a dark baseline with one drifting emission line, clipped to 12 bits.
func spectrum(r *rand.Rand, n, frame int) []uint16 {
	center := float64(n) * (0.3 + 0.4*math.Sin(float64(frame)/20))
	width := float64(n) / 60
	s := make([]uint16, n)
	for i := range s {
		v := 180 + r.NormFloat64()*6 + 3200*math.Exp(-math.Pow((float64(i)-center)/width, 2))
		s[i] = uint16(math.Max(0, math.Min(ccdframe.DefaultSampleMax, v)))
	}
	return s
}
