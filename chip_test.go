package avrsig

import "testing"

func TestChipName(t *testing.T) {
	testCases := []struct {
		sig  Sig
		want string
	}{
		{Sig{0x1E, 0x92, 0x05}, "ATmega48A"},
		{Sig{0x1E, 0x92, 0x0A}, "ATmega48PA"},
		{Sig{0x1E, 0x93, 0x0A}, "ATmega88A"},
		{Sig{0x1E, 0x93, 0x0F}, "ATmega88PA"},
		{Sig{0x1E, 0x94, 0x06}, "ATmega168A"},
		{Sig{0x1E, 0x94, 0x0B}, "ATmega168PA"},
		{Sig{0x1E, 0x95, 0x14}, "ATmega328"},
		{Sig{0x1E, 0x95, 0x0F}, "ATmega328P"},
		{Sig{0x1E, 0x95, 0x16}, "ATmega328PB"},
		{Sig{0x1E, 0x93, 0x14}, "ATtiny828"},
		{Sig{0x00, 0x00, 0x00}, "UNKNOWN"},
		{Sig{0xFF, 0xFF, 0xFF}, "UNKNOWN"},
		{Sig{0x1F, 0x95, 0x0F}, "UNKNOWN"},
		{Sig{0x1E, 0x96, 0x0F}, "UNKNOWN"},
		{Sig{0x1E, 0x95, 0x00}, "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.sig.Hex(), func(t *testing.T) {
			if got := ChipName(tc.sig); got != tc.want {
				t.Errorf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestTargetsRoundtrip(t *testing.T) {
	for _, target := range Targets() {
		sig, ok := SigOf(target)
		if !ok {
			t.Fatalf("%v: no signature", target)
		}
		if got := LookupTarget(sig); got != target {
			t.Errorf("%v: got %v", sig, got)
		}
		parsed, err := ParseTarget(target.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != target {
			t.Errorf("parse %q: got %v", target, parsed)
		}
	}
}

func TestParseTarget(t *testing.T) {
	testCases := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"", TargetUnknown, false},
		{"auto", TargetUnknown, false},
		{"AUTO", TargetUnknown, false},
		{"atmega328p", TargetATmega328P, false},
		{"ATtiny828", TargetATtiny828, false},
		{"UNKNOWN", TargetUnknown, true},
		{"atmega2560", TargetUnknown, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTarget(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, want error %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestSigHex(t *testing.T) {
	testCases := []struct {
		sig  Sig
		want string
	}{
		{Sig{0x1E, 0x95, 0x0F}, "0x1E950F"},
		{Sig{0x05, 0x05, 0x05}, "0x050505"},
		{Sig{0xFF, 0xFF, 0xFF}, "0xFFFFFF"},
		{Sig{0x00, 0x00, 0x00}, "0x000000"},
	}

	for _, tc := range testCases {
		if got := tc.sig.Hex(); got != tc.want {
			t.Errorf("got %s want %s", got, tc.want)
		}
	}
}

func TestParseSig(t *testing.T) {
	testCases := []struct {
		in      string
		want    Sig
		wantErr bool
	}{
		{"0x1E950F", Sig{0x1E, 0x95, 0x0F}, false},
		{"1e950f", Sig{0x1E, 0x95, 0x0F}, false},
		{"1E 93 14", Sig{0x1E, 0x93, 0x14}, false},
		{"1e:95:16", Sig{0x1E, 0x95, 0x16}, false},
		{"1E95", Sig{}, true},
		{"1E950G", Sig{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSig(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, want error %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got %v want %v", got, tc.want)
			}
		})
	}
}
