package bridge

import (
	"time"

	"github.com/northvolt/go-avrsig"
	"github.com/northvolt/go-avrsig/pkg/sigrow"
	"periph.io/x/conn/v3/i2c"
)

type IfaceType int

const (
	IfaceI2C IfaceType = iota
	IfaceHID
	IfaceSerial
)

func (t IfaceType) String() string {
	switch t {
	case IfaceI2C:
		return "i2c"
	case IfaceHID:
		return "hid"
	case IfaceSerial:
		return "serial"
	default:
		return "unknown"
	}
}

// Config is the configuration object for a bridge.
type Config struct {
	// IfaceType affects how communication with the bridge is done.
	IfaceType IfaceType
	// Target selects the calibration values to expose.
	//
	// When TargetUnknown, the target is resolved from the signature bytes.
	Target avrsig.Target
	// I2C contains I²C specific configuration.
	I2C I2CConfig
	// HID contains HID specific configuration.
	HID HIDConfig
	// Serial contains serial port specific configuration.
	Serial SerialConfig
	// RowSize is the number of signature row bytes to read.
	//
	// Values outside of 1..sigrow.RowSize read the full row.
	RowSize int
	// WakeDelay defines the time to wait between attempts.
	WakeDelay time.Duration
	// RxRetries is the number of retries to attempt when reading the row.
	RxRetries int
	// Debug is used for debug output.
	Debug avrsig.Logger
}

type I2CConfig struct {
	Address uint16
	Bus     i2c.Bus
}

// KitType is the programming interface between kit and target.
type KitType int

const (
	KitTypeAuto KitType = iota
	KitTypeISP
	KitTypeTPI
	KitTypeUPDI
	KitTypePDI
)

func (k KitType) String() string {
	switch k {
	case KitTypeAuto:
		return "auto"
	case KitTypeISP:
		return "isp"
	case KitTypeTPI:
		return "tpi"
	case KitTypeUPDI:
		return "updi"
	case KitTypePDI:
		return "pdi"
	default:
		return "unknown"
	}
}

type HIDConfig struct {
	// DevIndex is the kit enumeration index to use unless DevIdentity is set.
	DevIndex int

	// KitType indicates the programming interface to use.
	KitType KitType

	// DevIdentity is the identity of the target on the kit.
	DevIdentity uint8

	// VendorID of the kit.
	VendorID uint16

	// ProductID of the kit.
	ProductID uint16

	// PacketSize is the size of the USB packet.
	PacketSize int
}

// SerialConfig configures a kit attached through a USB serial adapter.
type SerialConfig struct {
	// Port is the serial device, e.g. /dev/ttyACM0. When empty the first USB
	// port matching VendorID and ProductID is used.
	Port string

	BaudRate int

	VendorID  uint16
	ProductID uint16

	DevIndex    int
	KitType     KitType
	DevIdentity uint8

	// ReadTimeout bounds the wait for each reply chunk.
	ReadTimeout time.Duration
}

// ConfigI2CDefault returns a default config for an I²C bridge.
//
// The caller owns bus and is responsible for closing it.
func ConfigI2CDefault(bus i2c.Bus) Config {
	return Config{
		IfaceType: IfaceI2C,
		RowSize:   sigrow.RowSize,
		WakeDelay: 2 * time.Millisecond,
		RxRetries: 20,
		I2C: I2CConfig{
			Address: defaultI2CAddress,
			Bus:     bus,
		},
	}
}

const (
	defaultI2CAddress = 0x29

	vendorAtmel = 0x03eb

	// productMEDBG is the mEDBG debugger found on Xplained Mini boards.
	productMEDBG = 0x2145
)

// ConfigKitHIDDefault returns a configuration for the kit protocol.
func ConfigKitHIDDefault() Config {
	return Config{
		IfaceType: IfaceHID,
		RowSize:   sigrow.RowSize,
		WakeDelay: 10 * time.Millisecond,
		RxRetries: 3,
		HID: HIDConfig{
			DevIndex:    0,
			KitType:     KitTypeAuto,
			DevIdentity: 0,
			VendorID:    vendorAtmel,
			ProductID:   productMEDBG,
			PacketSize:  64,
		},
	}
}

// ConfigKitSerialDefault returns a configuration for the kit protocol over a
// serial port. An empty port enables discovery by USB ids.
func ConfigKitSerialDefault(port string) Config {
	return Config{
		IfaceType: IfaceSerial,
		RowSize:   sigrow.RowSize,
		WakeDelay: 10 * time.Millisecond,
		RxRetries: 3,
		Serial: SerialConfig{
			Port:        port,
			BaudRate:    115200,
			VendorID:    vendorAtmel,
			ProductID:   productMEDBG,
			KitType:     KitTypeAuto,
			ReadTimeout: time.Second,
		},
	}
}

func (cfg Config) rowSize() int {
	if cfg.RowSize <= 0 || cfg.RowSize > sigrow.RowSize {
		return sigrow.RowSize
	}
	return cfg.RowSize
}
