package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"net"
	"strings"
)

// maxNode is the largest snowflake node number (10 bits).
const maxNode = 1023

// firstMAC returns the hardware address of the first interface that is up.
func firstMAC() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, i := range interfaces {
		if i.Flags&net.FlagUp != 0 && len(i.HardwareAddr) > 0 {
			return i.HardwareAddr.String()
		}
	}
	return ""
}

// DeviceID is a short stable tag for this register, e.g. "POS-A1B2C3D4".
func DeviceID() string {
	mac := firstMAC()
	if mac == "" {
		return "POS-UNKNOWN"
	}
	hash := sha256.Sum256([]byte(mac))
	return "POS-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}

// NodeID derives a snowflake node number from the hardware address so two
// registers sharing one database do not mint the same invoice number.
// Falls back to 1 when no interface is found.
func NodeID() int64 {
	return nodeFromMAC(firstMAC())
}

func nodeFromMAC(mac string) int64 {
	if mac == "" {
		return 1
	}
	hash := sha256.Sum256([]byte(mac))
	return int64(binary.BigEndian.Uint16(hash[:2]) % (maxNode + 1))
}
