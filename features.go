package avrsig

import (
	"fmt"
	"strings"
	"sync"
)

// Feature is a calibration value whose presence depends on the target.
type Feature uint8

// Features in their declared order. Summaries list them in this order.
const (
	FeatureRCOscillator Feature = iota
	FeatureInternal8MHzOscillator
	FeatureOscillatorTemperatureA
	FeatureOscillatorTemperatureB
	FeatureInternal32kHzOscillator
	FeatureTemperatureSensorGain
	FeatureTemperatureSensorOffset
	numFeatures
)

var featureInfo = [numFeatures]struct {
	addr  uint8
	label string
}{
	FeatureRCOscillator:            {0x01, "RC Oscillator Calibration"},
	FeatureInternal8MHzOscillator:  {0x01, "Internal 8MHz Oscillator Calibration (OSCCAL0)"},
	FeatureOscillatorTemperatureA:  {0x03, "Oscillator Temperature Calibration Register A (OSCTCAL0A)"},
	FeatureOscillatorTemperatureB:  {0x05, "Oscillator Temperature Calibration Register B (OSCTCAL0B)"},
	FeatureInternal32kHzOscillator: {0x07, "Internal 32kHz Oscillator Calibration (OSCCAL1)"},
	FeatureTemperatureSensorGain:   {0x2C, "Temperature Sensor Gain Calibration"},
	FeatureTemperatureSensorOffset: {0x2D, "Temperature Sensor Offset Calibration"},
}

// Addr returns the signature row address of the calibration byte.
func (f Feature) Addr() uint8 {
	if f >= numFeatures {
		panic("avrsig: unknown feature")
	}
	return featureInfo[f].addr
}

// String returns the label used in summaries.
func (f Feature) String() string {
	if f >= numFeatures {
		return "unknown"
	}
	return featureInfo[f].label
}

// AllFeatures returns every feature in declared order.
func AllFeatures() []Feature {
	fs := make([]Feature, numFeatures)
	for i := range fs {
		fs[i] = Feature(i)
	}
	return fs
}

// FeatureSet describes which calibration values a target provides.
type FeatureSet uint8

// NewFeatureSet returns a set containing fs.
func NewFeatureSet(fs ...Feature) FeatureSet {
	var s FeatureSet
	for _, f := range fs {
		s |= 1 << f
	}
	return s
}

func (s FeatureSet) Has(f Feature) bool {
	return f < numFeatures && s&(1<<f) != 0
}

// Features returns the members of the set in declared order.
func (s FeatureSet) Features() []Feature {
	var fs []Feature
	for f := Feature(0); f < numFeatures; f++ {
		if s.Has(f) {
			fs = append(fs, f)
		}
	}
	return fs
}

var (
	megaFeatures = NewFeatureSet(FeatureRCOscillator)
	tinyFeatures = NewFeatureSet(
		FeatureInternal8MHzOscillator,
		FeatureOscillatorTemperatureA,
		FeatureOscillatorTemperatureB,
		FeatureInternal32kHzOscillator,
		FeatureTemperatureSensorGain,
		FeatureTemperatureSensorOffset,
	)
)

// FeaturesFor returns the calibration values provided by the target.
//
// Unknown targets and the ATmega328PB have no calibration values listed.
func FeaturesFor(t Target) FeatureSet {
	switch t {
	case TargetATmega48A, TargetATmega48PA,
		TargetATmega88A, TargetATmega88PA,
		TargetATmega168A, TargetATmega168PA,
		TargetATmega328, TargetATmega328P:
		return megaFeatures
	case TargetATtiny828:
		return tinyFeatures
	default:
		return 0
	}
}

// Features holds the calibration values of one device.
//
// Values are read on first use and cached for the lifetime of the object.
// It is safe for concurrent use.
type Features struct {
	r    Reader
	set  FeatureSet
	once sync.Once

	values [numFeatures]uint8
}

// NewFeatures returns Features reading the values in set through r.
func NewFeatures(r Reader, set FeatureSet) *Features {
	return &Features{r: r, set: set}
}

// Init reads the calibration values. Only the first call touches the Reader.
func (f *Features) Init() {
	f.once.Do(func() {
		for _, feat := range f.set.Features() {
			f.values[feat] = f.r.SignatureByte(feat.Addr())
		}
	})
}

// Set returns the features provided by the device.
func (f *Features) Set() FeatureSet {
	return f.set
}

// Value returns the calibration value of feat. The boolean is false when the
// device does not provide it.
func (f *Features) Value(feat Feature) (uint8, bool) {
	f.Init()
	if !f.set.Has(feat) {
		return 0, false
	}
	return f.values[feat], true
}

func (f *Features) RCOscillatorCalibration() (uint8, bool) {
	return f.Value(FeatureRCOscillator)
}

func (f *Features) Internal8MHzOscillatorCalibration() (uint8, bool) {
	return f.Value(FeatureInternal8MHzOscillator)
}

func (f *Features) OscillatorTemperatureCalibrationA() (uint8, bool) {
	return f.Value(FeatureOscillatorTemperatureA)
}

func (f *Features) OscillatorTemperatureCalibrationB() (uint8, bool) {
	return f.Value(FeatureOscillatorTemperatureB)
}

func (f *Features) Internal32kHzOscillatorCalibration() (uint8, bool) {
	return f.Value(FeatureInternal32kHzOscillator)
}

func (f *Features) TemperatureSensorGainCalibration() (uint8, bool) {
	return f.Value(FeatureTemperatureSensorGain)
}

func (f *Features) TemperatureSensorOffsetCalibration() (uint8, bool) {
	return f.Value(FeatureTemperatureSensorOffset)
}

// Lines returns one "<label>: 0x<HH>" line per provided feature.
func (f *Features) Lines() []string {
	f.Init()
	var lines []string
	for _, feat := range f.set.Features() {
		lines = append(lines, fmt.Sprintf("%s: 0x%02X", feat, f.values[feat]))
	}
	return lines
}

// Summary returns Lines separated by newlines.
func (f *Features) Summary() string {
	return strings.Join(f.Lines(), "\n")
}
