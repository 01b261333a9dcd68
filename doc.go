// Package avrsig exposes the factory programmed signature row of AVR
// microcontrollers.
//
// The signature row holds the three device signature bytes together with
// oscillator and temperature sensor calibration values trimmed at the
// factory. Which calibration values exist depends on the part; a FeatureSet
// describes them for a given Target.
//
// Values are fetched through a Reader exactly once per object and cached.
// Package bridge reads a row snapshot from real hardware.
//
// Copyright (c) 2022 Northvolt AB and the avrsig authors.
//
// # Datasheets
//
// Signature row layouts are documented in the "Memory Programming" chapter
// of each device datasheet, e.g. ATmega48A/PA/88A/PA/168A/PA/328/P section
// 28.3 and ATtiny828 section 26.2.
package avrsig
