package bridge

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/northvolt/go-avrsig"
)

// halKit speaks the ASCII kit protocol on top of a packet interface.
//
// Commands are terminated by a newline and replies have the form
// "SS(DATA)" where SS is the hex encoded status byte.
//
// HID transfers whole packets, so commands are zero padded to the packet size.
// A serial port is a byte stream and only the command itself is written.
type halKit struct {
	phy phy
	buf []byte
	pad bool
	cfg Config
}

func newHALKit(ctx context.Context, p phy, cfg Config) (*halKit, error) {
	buf := make([]byte, getPacketSize(cfg))
	p = &phyDebug{"kit", avrsig.GetLogger(cfg.Debug), p}
	kit := &halKit{p, buf, cfg.IfaceType == IfaceHID, cfg}
	return kit, kit.init(ctx)
}

// kitPrefix addresses the signature row reader of the kit firmware.
const kitPrefix = 's'

func kitTypeFromKitIface(iface string) (KitType, error) {
	switch iface {
	case "ISP":
		return KitTypeISP, nil
	case "TPI":
		return KitTypeTPI, nil
	case "UPDI":
		return KitTypeUPDI, nil
	case "PDI":
		return KitTypePDI, nil
	default:
		return KitType(0), errors.New("bridge: unknown kit type")
	}
}

const (
	kitMaxScanCount = 8

	// kitMaxRead is the most row bytes requested per command.
	kitMaxRead = 16

	kitRxWrapSize = 6
)

func (h *halKit) init(ctx context.Context) error {
	var (
		devIndex    int
		kitType     KitType
		devIdentity uint8
	)
	switch h.cfg.IfaceType {
	case IfaceHID:
		devIndex = h.cfg.HID.DevIndex
		kitType = h.cfg.HID.KitType
		devIdentity = h.cfg.HID.DevIdentity
	case IfaceSerial:
		devIndex = h.cfg.Serial.DevIndex
		kitType = h.cfg.Serial.KitType
		devIdentity = h.cfg.Serial.DevIdentity
	default:
		kitType = KitTypeAuto
	}

	// Iterate to find the target device
	for i := 0; i < kitMaxScanCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		dev, err := h.getKitDeviceByIndex(i)
		if errors.Is(err, errNoDevice) {
			continue
		} else if err != nil {
			return err
		}

		// Check if the returned device is a device we want to pick
		if devIndex != 0 && devIndex != i {
			continue
		}
		if devIdentity != 0 && devIdentity != dev.Address {
			continue
		}
		if kitType != KitTypeAuto && kitType != dev.KitType {
			continue
		}

		if kitType != KitTypeAuto {
			if err := h.selectInterface(kitType); err != nil {
				return err
			}
		}

		return h.selectDevice(dev.Address)
	}

	return errors.New("bridge: failed to discover device")
}

func (h *halKit) Wake() error {
	command := fmt.Sprintf("%c:w()\n", kitPrefix)
	return h.execute([]byte(command))
}

func (h *halKit) Idle() error {
	command := fmt.Sprintf("%c:i()\n", kitPrefix)
	return h.execute([]byte(command))
}

func (h *halKit) ReadAt(dst []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(dst)) > 0xff {
		return 0, errAddress
	}

	read := 0
	for read < len(dst) {
		size := len(dst) - read
		if size > kitMaxRead {
			size = kitMaxRead
		}

		command := fmt.Sprintf("%c:r(%02X%02X)\n", kitPrefix, off+int64(read), size)
		n, err := h.executeResponse([]byte(command), dst[read:read+size])
		if err != nil {
			return read, err
		}
		if n != size {
			return read + n, errShortRead
		}
		read += n
	}
	return read, nil
}

func (h *halKit) execute(command []byte) error {
	var data [10]byte
	_, err := h.executeResponse(command, data[:])
	return err
}

func (h *halKit) executeResponse(command []byte, data []byte) (int, error) {
	if _, err := h.phySend(command); err != nil {
		return 0, err
	}

	// the reply holds two hex digits per byte plus status and framing
	reply := make([]byte, hex.EncodedLen(len(data))+kitRxWrapSize)
	n, err := h.phyRecv(reply)
	if err != nil {
		return 0, err
	}
	return kitParseRsp(reply[:n], data)
}

func (h *halKit) getKitDeviceByIndex(index int) (kitDevice, error) {
	command := fmt.Sprintf("board:device(%02X)\n", index)
	if _, err := h.phySend([]byte(command)); err != nil {
		return kitDevice{}, err
	}

	reply := make([]byte, len(h.buf))
	if n, err := h.phyRecv(reply); err != nil {
		return kitDevice{}, err
	} else {
		return parseKitDevice(reply[:n])
	}
}

func (h *halKit) selectInterface(kitType KitType) error {
	command := fmt.Sprintf(
		"%c:physical:interface(%s)\n", kitPrefix, strings.ToUpper(kitType.String()),
	)
	return h.execute([]byte(command))
}

func (h *halKit) selectDevice(address uint8) error {
	command := fmt.Sprintf(
		"%c:physical:select(%02X)\n", kitPrefix, address,
	)
	return h.execute([]byte(command))
}

type kitDevice struct {
	Name    string
	KitType KitType
	Address uint8
}

func parseKitDevice(buf []byte) (kitDevice, error) {
	var (
		kitName  string
		kitIface string
		index    uint8
		address  uint8
	)
	if bytes.HasPrefix(buf, []byte("no_device")) {
		return kitDevice{}, errNoDevice
	}
	_, err := fmt.Sscanf(
		string(buf), "%s %s %02X(%02X)", &kitName, &kitIface, &index, &address,
	)
	if err != nil {
		return kitDevice{}, fmt.Errorf("bridge: invalid kit device: %w", err)
	}

	if kt, err := kitTypeFromKitIface(kitIface); err != nil {
		return kitDevice{}, err
	} else {
		return kitDevice{kitName, kt, address}, nil
	}
}

func (h *halKit) phySend(txData []byte) (int, error) {
	left := len(txData)
	sent := 0
	for left > 0 {
		n := copy(h.buf, txData[sent:])
		packet := h.buf[:n]
		if h.pad {
			for i := n; i < len(h.buf); i++ {
				h.buf[i] = 0
			}
			packet = h.buf
		}

		if _, err := h.phy.Write(packet); err != nil {
			return sent, err
		}

		left -= n
		sent += n
	}

	return sent, nil
}

func (h *halKit) phyRecv(data []byte) (int, error) {
	read := 0
	for {
		n, err := h.phy.Read(h.buf)
		if err != nil {
			return read, err
		}

		// end early on response end
		if index := bytes.IndexByte(h.buf[:n], '\n'); index != -1 {
			if read+index > len(data) {
				return read, errRecvBuffer
			}
			read += copy(data[read:], h.buf[:index])
			return read, nil
		}

		// error out to make sure we never loose any data
		if read+n > len(data) {
			return read, errRecvBuffer
		}
		read += copy(data[read:], h.buf[:n])
	}
}

func kitParseRsp(reply []byte, dst []byte) (int, error) {
	if len(reply) < 4 {
		return 0, errors.New("bridge: reply too short")
	}

	var status [1]byte
	n, err := hex.Decode(status[:], reply[0:2])
	if err != nil {
		return 0, err
	} else if err := validateResponseStatusCode(status[:n]); err != nil {
		return 0, err
	}

	index := bytes.IndexByte(reply[3:], ')')
	if index == -1 {
		return 0, errors.New("bridge: failed to find end of frame")
	}
	size := hex.DecodedLen(index)
	if size > len(dst) {
		return 0, errRecvBuffer
	}

	body := reply[3 : 3+index]
	return hex.Decode(dst, body)
}

func getPacketSize(cfg Config) int {
	switch cfg.IfaceType {
	case IfaceHID:
		return cfg.HID.PacketSize
	case IfaceSerial:
		return serialChunkSize
	default:
		panic("bridge: unsupported iface type")
	}
}
