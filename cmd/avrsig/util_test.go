package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/northvolt/go-avrsig/bridge"
	"github.com/northvolt/go-avrsig/pkg/sigrow"
	"gopkg.in/yaml.v3"
)

// row328P holds the first bytes of an ATmega328P signature row, RC
// oscillator calibration 0x43.
const row328P = "1E 43 95 FF 0F"

func TestPrettyHexIndent(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		prefix string
		space  string
		want   string
	}{
		{"empty", []byte{}, "  ", "", ""},
		{"one", []byte{0x00}, "  ", "", "  00"},
		{"two", []byte{0x00, 0x01}, "  ", "", "  00 01"},
		{"three", []byte{0x00, 0x01, 0x02}, "    ", "", "    00 01 02"},
		{"upper", []byte{0x1e, 0xaf}, "", "", "1E AF"},
		{
			"big", bytes.Repeat([]byte{0x00}, 32), "    ", "",
			"    00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00\n" +
				"    00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00",
		},
		{
			"space", bytes.Repeat([]byte{0x00}, 32), "    ", " ",
			"    00 00 00 00 00 00 00 00  00 00 00 00 00 00 00 00\n" +
				"    00 00 00 00 00 00 00 00  00 00 00 00 00 00 00 00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := prettyHexIndent(tc.in, tc.prefix, tc.space)
			if got != tc.want {
				t.Errorf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestGetI2CAddress(t *testing.T) {
	testCases := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"", defaultI2CAddress, false},
		{"29", 0x29, false},
		{"0x30", 0x30, false},
		{"7f", 0x7f, false},
		{"80", 0, true},
		{"zz", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := getI2CAddress(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tc.want {
				t.Errorf("want %#x, got %#x", tc.want, got)
			}
		})
	}
}

func TestGetDeviceIdentity(t *testing.T) {
	testCases := []struct {
		in      string
		want    uint8
		wantErr bool
	}{
		{"", defaultDeviceIdentity, false},
		{"1e", 0x1e, false},
		{"0xff", 0xff, false},
		{"100", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := getDeviceIdentity(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tc.want {
				t.Errorf("want %#x, got %#x", tc.want, got)
			}
		})
	}
}

func TestGetKitType(t *testing.T) {
	testCases := []struct {
		in      string
		want    bridge.KitType
		wantErr bool
	}{
		{"auto", bridge.KitTypeAuto, false},
		{"ISP", bridge.KitTypeISP, false},
		{"updi", bridge.KitTypeUPDI, false},
		{"jtag", bridge.KitTypeAuto, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := getKitType(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tc.want {
				t.Errorf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func hexRootConfig() *rootConfig {
	return &rootConfig{iface: "hex", target: "auto"}
}

func TestInfoText(t *testing.T) {
	var out bytes.Buffer
	c := infoConfig{
		rootConfig: hexRootConfig(),
		in:         strings.NewReader(row328P),
		out:        &out,
		err:        &bytes.Buffer{},
	}
	if err := c.Exec(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Signature Information:\n\tBoard: ATmega328P (0x1E950F)\n\tRC Oscillator Calibration: 0x43\n",
		"Signature Row:\n    1E 43 95 FF 0F\n",
		"Fingerprint:\n    ",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q does not contain %q", out.String(), want)
		}
	}
}

func TestInfoJSON(t *testing.T) {
	var out bytes.Buffer
	c := infoConfig{
		rootConfig: hexRootConfig(),
		in:         strings.NewReader(row328P),
		out:        &out,
		err:        &bytes.Buffer{},
		json:       true,
	}
	if err := c.Exec(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Name        string            `json:"name"`
		Signature   string            `json:"signature"`
		Calibration []calibrationInfo `json:"calibration"`
		Row         string            `json:"row"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "ATmega328P" || got.Signature != "0x1E950F" {
		t.Errorf("unexpected identity %s %s", got.Name, got.Signature)
	}
	if got.Row != "1E4395FF0F" {
		t.Errorf("unexpected row %s", got.Row)
	}
	want := calibrationInfo{Name: "RC Oscillator Calibration", Address: 0x01, Value: 0x43}
	if len(got.Calibration) != 1 || got.Calibration[0] != want {
		t.Errorf("want %+v, got %+v", want, got.Calibration)
	}
}

func TestInfoYAML(t *testing.T) {
	var out bytes.Buffer
	c := infoConfig{
		rootConfig: hexRootConfig(),
		in:         strings.NewReader("1E 8A 93 05 14 FF FF 4C"),
		out:        &out,
		err:        &bytes.Buffer{},
		yaml:       true,
	}
	if err := c.Exec(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["name"] != "ATtiny828" {
		t.Errorf("unexpected name %v", got["name"])
	}
	if got["row"] != "1E8A930514FFFF4C" {
		t.Errorf("unexpected row %v", got["row"])
	}
	if cal, _ := got["calibration"].([]any); len(cal) != 6 {
		t.Errorf("want 6 calibration values, got %d", len(cal))
	}
}

func TestInfoUnknownInterface(t *testing.T) {
	c := infoConfig{
		rootConfig: &rootConfig{iface: "spi"},
		in:         strings.NewReader(row328P),
		out:        &bytes.Buffer{},
		err:        &bytes.Buffer{},
	}
	if err := c.Exec(context.Background(), nil); err == nil {
		t.Error("expected error")
	}
}

func TestDump(t *testing.T) {
	testCases := []struct {
		output string
		want   string
	}{
		{outputHex, "1E 43 95 FF 0F\n"},
		{outputGo, "[...]byte{\n  0x1e, 0x43, 0x95, 0xff, 0x0f,\n}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.output, func(t *testing.T) {
			var out bytes.Buffer
			c := dumpConfig{
				rootConfig: hexRootConfig(),
				in:         strings.NewReader(row328P),
				out:        &out,
				err:        &bytes.Buffer{},
				output:     tc.output,
			}
			if err := c.Exec(context.Background(), nil); err != nil {
				t.Fatal(err)
			}
			if out.String() != tc.want {
				t.Errorf("want %q, got %q", tc.want, out.String())
			}
		})
	}
}

func TestDumpJSON(t *testing.T) {
	var out bytes.Buffer
	if err := writeRow(&out, outputJSON, []byte{0x1e, 0x43, 0x95, 0xff, 0x0f}); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Row    string `json:"row"`
		Header struct {
			Sig1  uint8 `json:"sig1"`
			Cal01 uint8 `json:"cal01"`
			Sig3  uint8 `json:"sig3"`
			Cal07 uint8 `json:"cal07"`
		} `json:"header"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Row != "1E4395FF0F" {
		t.Errorf("unexpected row %s", got.Row)
	}
	if got.Header.Sig1 != 0x1e || got.Header.Cal01 != 0x43 || got.Header.Sig3 != 0x0f {
		t.Errorf("unexpected header %+v", got.Header)
	}
}

func TestDumpCBOR(t *testing.T) {
	var out bytes.Buffer
	if err := writeRow(&out, outputCBOR, []byte{0x1e, 0x43, 0x95, 0xff, 0x0f}); err != nil {
		t.Fatal(err)
	}

	rec, err := sigrow.UnmarshalRecordCBOR(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Row.String() != "1E4395FF0F" {
		t.Errorf("unexpected row %s", rec.Row)
	}
	if rec.Header.Sig2 != 0x95 {
		t.Errorf("unexpected header %+v", rec.Header)
	}
}

func TestDumpInvalidOutput(t *testing.T) {
	if err := writeRow(&bytes.Buffer{}, "bin", []byte{0x1e}); err == nil {
		t.Error("expected error")
	}
}

func TestLookup(t *testing.T) {
	var out bytes.Buffer
	c := lookupConfig{rootConfig: hexRootConfig(), out: &out}
	if err := c.Exec(context.Background(), []string{"0x1E950F", "1e:93:14", "1F9514"}); err != nil {
		t.Fatal(err)
	}

	want := "0x1E950F ATmega328P\n0x1E9314 ATtiny828\n0x1F9514 UNKNOWN\n"
	if out.String() != want {
		t.Errorf("want %q, got %q", want, out.String())
	}
}

func TestLookupErrors(t *testing.T) {
	c := lookupConfig{rootConfig: hexRootConfig(), out: &bytes.Buffer{}}
	if err := c.Exec(context.Background(), nil); err == nil {
		t.Error("expected error without arguments")
	}
	if err := c.Exec(context.Background(), []string{"1E95"}); err == nil {
		t.Error("expected error for a short signature")
	}
}

func TestChips(t *testing.T) {
	var out bytes.Buffer
	c := chipsConfig{rootConfig: hexRootConfig(), out: &out}
	if err := c.Exec(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 11 {
		t.Fatalf("want 11 lines, got %d:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "SIGNATURE") {
		t.Errorf("unexpected header %q", lines[0])
	}
	for _, want := range []string{"0x1E950F", "ATmega328P", "RC Oscillator Calibration"} {
		if !strings.Contains(lines[8], want) {
			t.Errorf("line %q does not contain %q", lines[8], want)
		}
	}
	if !strings.HasSuffix(lines[9], "-") {
		t.Errorf("ATmega328PB should list no calibration, got %q", lines[9])
	}
}
