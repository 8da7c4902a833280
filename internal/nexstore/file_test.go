package nexstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/nex/internal/logger"
	"github.com/samcharles93/nex/pkg/nex"
)

func openSample(t *testing.T) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.nex")
	if err := WriteSample(path, "", 0); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("open nexstore: %v", err)
	}
	t.Cleanup(func() {
		if cerr := f.Close(); cerr != nil {
			t.Fatalf("close nexstore: %v", cerr)
		}
	})
	return f
}

func almostEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestInfo(t *testing.T) {
	t.Parallel()

	f := openSample(t)
	info, err := f.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.TBeg != 0 || info.TEnd != 10 {
		t.Fatalf("time span: got [%v,%v] want [0,10]", info.TBeg, info.TEnd)
	}
	if info.Comment != "test nex file" || info.NumVars != 6 || info.Frequency != SampleFrequency {
		t.Fatalf("info mismatch: %+v", info)
	}
	if info.Counts["neuron"] != 2 || info.Counts["marker"] != 1 {
		t.Fatalf("counts: %v", info.Counts)
	}

	vars := f.Variables()
	if len(vars) != 6 || vars[4].Name != "wave1" || vars[4].Points != 8 || vars[4].Type != "waveform" {
		t.Fatalf("variables: %+v", vars)
	}
}

func TestTypedReads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := openSample(t)

	neurons, err := f.Neurons(ctx)
	if err != nil || neurons.Err() != nil {
		t.Fatalf("neurons: %v %v", err, neurons.Err())
	}
	if len(neurons.Data) != 2 || !almostEqual(neurons.Data[0].Timestamps, []float64{1, 2, 3}) {
		t.Fatalf("neuron1: %+v", neurons.Data)
	}

	second, err := f.Neurons(ctx, 1)
	if err != nil {
		t.Fatalf("neuron index 1: %v", err)
	}
	if len(second.Data) != 1 || second.Data[0].Name != "neuron2" {
		t.Fatalf("neuron index 1 resolved to %+v", second.Data)
	}

	intervals, err := f.Intervals(ctx)
	if err != nil {
		t.Fatalf("intervals: %v", err)
	}
	iv := intervals.Data[0]
	if !almostEqual(iv.Starts, []float64{1, 4}) || !almostEqual(iv.Ends, []float64{2, 6}) || !almostEqual(iv.Durations, []float64{1, 2}) {
		t.Fatalf("interval1: %+v", iv)
	}

	cont, err := f.Continuous(ctx)
	if err != nil {
		t.Fatalf("continuous: %v", err)
	}
	c := cont.Data[0]
	if !reflect.DeepEqual(c.FragmentStarts, []int{0, 5}) || !almostEqual(c.FragmentTimestamps, []float64{1, 7}) {
		t.Fatalf("continuous fragments: %+v", c)
	}
	if !almostEqual(c.Data, []float64{0, 0.001, 0.002, 0.003, 0.004, 0, 0.004, 0.006}) {
		t.Fatalf("continuous data: %v", c.Data)
	}

	waves, err := f.Waveforms(ctx)
	if err != nil {
		t.Fatalf("waveforms: %v", err)
	}
	w := waves.Data[0]
	if len(w.Waves) != 3 || w.Waves[1][0] != 7 || w.Waves[2][7] != 7 {
		t.Fatalf("waveform waves: %v", w.Waves)
	}
	if !almostEqual(w.Timestamps, []float64{0.5, 1.5, 2}) {
		t.Fatalf("waveform timestamps: %v", w.Timestamps)
	}

	markers, err := f.Markers(ctx)
	if err != nil {
		t.Fatalf("markers: %v", err)
	}
	m := markers.Data[0]
	if len(m.Fields) != 2 || m.Fields[0].Name != "field1" || m.Fields[1].Values[2] != "field2value3" {
		t.Fatalf("marker fields: %+v", m.Fields)
	}

	events, err := f.Events(ctx)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events.Data) != 0 || len(events.Errors) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}

	pvs, err := f.PopulationVectors(ctx)
	if err != nil || len(pvs.Data) != 0 {
		t.Fatalf("expected no population vectors, got %+v %v", pvs, err)
	}
}

func TestChannelIndexOutOfRange(t *testing.T) {
	t.Parallel()

	f := openSample(t)
	_, err := f.Neurons(context.Background(), 0, 5)
	var ie *nex.IndexError
	if !errors.As(err, &ie) || ie.Index != 5 {
		t.Fatalf("expected IndexError for 5, got %v", err)
	}
}

func TestIntervalTimes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := openSample(t)

	if got := f.ListIntervalNames(); !reflect.DeepEqual(got, []string{"interval1"}) {
		t.Fatalf("interval names: %v", got)
	}
	iv, err := f.IntervalTimes(ctx, "Interval1", false)
	if err != nil {
		t.Fatalf("case insensitive lookup: %v", err)
	}
	if iv.Name != "interval1" || len(iv.Starts) != 2 {
		t.Fatalf("interval: %+v", iv)
	}
	if _, err := f.IntervalTimes(ctx, "Interval1", true); !errors.Is(err, ErrIntervalNotFound) {
		t.Fatalf("expected ErrIntervalNotFound, got %v", err)
	}
	if _, err := f.IntervalTimes(ctx, "neuron1", false); !errors.Is(err, ErrIntervalNotFound) {
		t.Fatalf("non-interval variable matched: %v", err)
	}
}

func TestFailedChannelIsLoggedAndIsolated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.nex")
	vars := []nex.Variable{
		&nex.Event{Meta: nex.Meta{Name: "ok1"}, Timestamps: []int32{1000}},
		&nex.Event{Meta: nex.Meta{Name: "broken"}, Timestamps: []int32{2000}},
		&nex.Event{Meta: nex.Meta{Name: "ok2"}, Timestamps: []int32{3000}},
	}
	if err := nex.WriteFile(path, nex.FileSpec{Frequency: 1000}, vars); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	binary.LittleEndian.PutUint32(raw[nex.FileHeaderSize+nex.VarHeaderSize+76:], 1<<20)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	var logs bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.New(slog.NewTextHandler(&logs, nil)))
	res, err := f.Events(ctx)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(res.Data) != 2 || res.Data[1].Name != "ok2" {
		t.Fatalf("siblings: %+v", res.Data)
	}
	if len(res.Errors) != 1 || res.Errors[0].Index != 1 || res.Errors[0].Name != "broken" {
		t.Fatalf("channel errors: %+v", res.Errors)
	}
	if res.Err() == nil {
		t.Fatalf("expected joined error")
	}
	if !strings.Contains(logs.String(), "var=broken") {
		t.Fatalf("failure not logged: %q", logs.String())
	}
}

func TestCancelledContextStopsBetweenChannels(t *testing.T) {
	t.Parallel()

	f := openSample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Neurons(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDumpJSON(t *testing.T) {
	t.Parallel()

	f := openSample(t)
	typ := nex.TypeContinuous
	d, err := f.Dump(context.Background(), DumpOptions{Type: &typ})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if len(d.Variables) != 1 || d.Variables[0].Index != 3 {
		t.Fatalf("dump selection: %+v", d.Variables)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, d); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var back struct {
		File      FileInfo `json:"file"`
		Variables []struct {
			Name string         `json:"name"`
			Type string         `json:"type"`
			Data ContinuousData `json:"data"`
		} `json:"variables"`
	}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.File.TEnd != 10 || back.Variables[0].Type != "continuous" {
		t.Fatalf("dump json: %s", buf.String())
	}
	if !reflect.DeepEqual(back.Variables[0].Data.FragmentStarts, []int{0, 5}) {
		t.Fatalf("fragment starts: %v", back.Variables[0].Data.FragmentStarts)
	}

	all, err := f.Dump(context.Background(), DumpOptions{})
	if err != nil {
		t.Fatalf("dump all: %v", err)
	}
	if len(all.Variables) != 6 {
		t.Fatalf("dump all: got %d variables", len(all.Variables))
	}
	for _, v := range all.Variables {
		if v.Error != "" {
			t.Fatalf("variable %d: %s", v.Index, v.Error)
		}
	}
}

func TestWriteSampleOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.nex")
	if err := WriteSample(path, "custom", 40000); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	fh, err := nex.ReadFileHeader(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if fh.Comment != "custom" || fh.Frequency != 40000 {
		t.Fatalf("header: %+v", fh)
	}
}
