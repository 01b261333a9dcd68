package avrsig

import (
	"strings"
	"sync"
	"testing"
)

func TestSignatureATmega328P(t *testing.T) {
	r := newCountingReader(map[uint8]byte{
		0x00: 0x1E, 0x01: 0x43, 0x02: 0x95, 0x04: 0x0F,
	})
	s := NewSignature(r, NewFeatures(r, FeaturesFor(TargetATmega328P)))

	if got := s.ChipName(); got != "ATmega328P" {
		t.Errorf("chip name: got %q", got)
	}
	if got := s.Hex(); got != "0x1E950F" {
		t.Errorf("hex: got %q", got)
	}
	if cal, ok := s.Features().RCOscillatorCalibration(); !ok || cal != 0x43 {
		t.Errorf("rc calibration: got %#x, %v", cal, ok)
	}

	want := "Signature Information:\n" +
		"\tBoard: ATmega328P (0x1E950F)\n" +
		"\tRC Oscillator Calibration: 0x43"
	if got := s.Summary(); got != want {
		t.Errorf("got %q want %q", got, want)
	}

	// three signature bytes and one calibration byte
	if got := r.total(); got != 4 {
		t.Errorf("got %d reads want 4", got)
	}
}

func TestSignatureUnknown(t *testing.T) {
	s := NewSignature(ReaderFunc(func(uint8) byte { return 0 }), nil)

	if got := s.ChipName(); got != Unknown {
		t.Errorf("got %q want %q", got, Unknown)
	}
	if got := s.Target(); got != TargetUnknown {
		t.Errorf("got %v", got)
	}
	want := "Signature Information:\n\tBoard: UNKNOWN (0x000000)"
	if got := s.Summary(); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSignatureSummaryOrder(t *testing.T) {
	r := newCountingReader(tinyRow)
	s := NewSignature(r, NewFeatures(r, FeaturesFor(TargetATtiny828)))

	lines := strings.Split(s.Summary(), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	if lines[1] != "\tBoard: ATtiny828 (0x1E9314)" {
		t.Errorf("board line: got %q", lines[1])
	}
	for i, f := range FeaturesFor(TargetATtiny828).Features() {
		if !strings.HasPrefix(lines[i+2], "\t"+f.String()+": 0x") {
			t.Errorf("line %d: got %q want %s", i+2, lines[i+2], f)
		}
	}
}

func TestSignatureConcurrentInit(t *testing.T) {
	var (
		mu    sync.Mutex
		reads int
	)
	r := ReaderFunc(func(addr uint8) byte {
		mu.Lock()
		reads++
		mu.Unlock()
		return tinyRow[addr]
	})
	s := NewSignature(r, NewFeatures(r, FeaturesFor(TargetATtiny828)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Summary()
		}()
	}
	wg.Wait()

	if reads != 9 {
		t.Errorf("got %d reads want 9", reads)
	}
}

type recordLogger struct {
	lines []string
}

func (l *recordLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, format)
}

func TestDebugReader(t *testing.T) {
	if r := DebugReader("sig", nil, ReaderFunc(nil)); r == nil {
		t.Fatal("nil reader")
	}

	var l recordLogger
	r := DebugReader("sig", &l, ReaderFunc(func(addr uint8) byte { return addr + 1 }))
	if got := r.SignatureByte(0x04); got != 0x05 {
		t.Errorf("got %#x", got)
	}
	if len(l.lines) != 2 {
		t.Errorf("got %d log lines want 2", len(l.lines))
	}
}
