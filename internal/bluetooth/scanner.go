// Package bluetooth provides local telemetry sources: a BLE advertisement
// scanner and a synthetic beacon generator for demos.
package bluetooth

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/metrics"
)

// ManufacturerData is one manufacturer-specific advertisement field.
type ManufacturerData struct {
	CompanyID uint16
	Data      []byte
}

// Scanner turns BLE advertisements into beacon observations.
type Scanner struct {
	adapter  *bluetooth.Adapter
	store    beacon.Updater
	ledCount int
	now      func() time.Time
	log      logrus.FieldLogger

	// IBeaconOnly drops advertisements that are not iBeacons.
	IBeaconOnly bool
}

// NewScanner creates a scanner on the default adapter.
func NewScanner(store beacon.Updater, ledCount int, logger logrus.FieldLogger) *Scanner {
	return &Scanner{
		adapter:  bluetooth.DefaultAdapter,
		store:    store,
		ledCount: ledCount,
		now:      time.Now,
		log:      logger.WithField("component", "ble"),
	}
}

// Observe handles one advertisement. It reports whether it was forwarded.
func (s *Scanner) Observe(address string, rssi int16, mfrs []ManufacturerData) bool {
	id := ""
	for _, m := range mfrs {
		if b, ok := ParseIBeacon(m.CompanyID, m.Data); ok {
			id = b.ID()
			break
		}
	}
	if id == "" {
		if s.IBeaconOnly || address == "" {
			s.log.WithFields(logrus.Fields{
				"address": address,
				"vendor":  vendorOf(mfrs),
			}).Debug("Skipping non-iBeacon advertisement")
			return false
		}
		id = address
	}

	s.store.Update(id, beacon.IDToPosition(id, s.ledCount), int(rssi), s.now())
	metrics.IncTelemetry("ble")
	return true
}

// Run enables the adapter and scans until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			var mfrs []ManufacturerData
			for _, m := range result.ManufacturerData() {
				mfrs = append(mfrs, ManufacturerData{CompanyID: m.CompanyID, Data: m.Data})
			}
			s.Observe(result.Address.String(), result.RSSI, mfrs)
		})
	}()
	s.log.WithField("ibeacon_only", s.IBeaconOnly).Info("BLE scan started")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("BLE scan: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	_ = s.adapter.StopScan()
	s.log.Info("BLE scan stopped")
	return nil
}
