package bluetooth

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// AppleCompanyID is the Bluetooth SIG company identifier iBeacons advertise under.
const AppleCompanyID uint16 = 0x004C

// IBeacon is a decoded iBeacon advertisement.
type IBeacon struct {
	UUID    uuid.UUID
	Major   uint16
	Minor   uint16
	TxPower int8 // calibrated RSSI at 1 m
}

// ID is the stable identifier used for the beacon on the strip.
func (b IBeacon) ID() string {
	return fmt.Sprintf("iBeacon:%s-%d-%d", b.UUID, b.Major, b.Minor)
}

// ParseIBeacon decodes Apple manufacturer data carrying the iBeacon prefix
// (type 0x02, length 0x15).
func ParseIBeacon(companyID uint16, data []byte) (IBeacon, bool) {
	if companyID != AppleCompanyID || len(data) < 23 || data[0] != 0x02 || data[1] != 0x15 {
		return IBeacon{}, false
	}
	id, err := uuid.FromBytes(data[2:18])
	if err != nil {
		return IBeacon{}, false
	}
	return IBeacon{
		UUID:    id,
		Major:   binary.BigEndian.Uint16(data[18:20]),
		Minor:   binary.BigEndian.Uint16(data[20:22]),
		TxPower: int8(data[22]),
	}, true
}
