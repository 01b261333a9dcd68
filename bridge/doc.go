// Package bridge acquires AVR signature row snapshots from hardware.
//
// The AVR itself cannot be asked for its signature row from a host. A bridge
// sits in between: either a companion microcontroller answering on I²C, or a
// USB HID programmer kit speaking an ASCII command protocol over an ISP, TPI,
// UPDI or PDI connection to the target.
//
// A Dev reads the row once, verifies it and exposes it through the
// infallible avrsig.Reader interface. All transport failures surface from
// New, NewI2CDev and NewHIDDev; nothing after that can fail.
package bridge
