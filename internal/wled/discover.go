package wled

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the mDNS service WLED controllers advertise.
	ServiceType = "_wled._tcp"
	Domain      = "local."

	// HostAuto asks ResolveHost to discover the controller.
	HostAuto = "auto"
)

// ErrNoController is returned when discovery finds nothing.
var ErrNoController = errors.New("no WLED controller found")

// Device is a discovered controller.
type Device struct {
	Name  string   `json:"name"`
	Host  string   `json:"host"`
	Port  int      `json:"port"`
	Addrs []string `json:"addrs"`
}

// Address returns the best address to reach the device: the first IPv4
// address, else the first address, else the mDNS host name.
func (d Device) Address() string {
	for _, a := range d.Addrs {
		if !strings.Contains(a, ":") {
			return a
		}
	}
	if len(d.Addrs) > 0 {
		return d.Addrs[0]
	}
	return strings.TrimSuffix(d.Host, ".")
}

func deviceFromEntry(entry *zeroconf.ServiceEntry) Device {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return Device{
		Name:  entry.Instance,
		Host:  entry.HostName,
		Port:  entry.Port,
		Addrs: addrs,
	}
}

// Discover browses for controllers until timeout elapses or ctx ends.
// Results are sorted by name; entries seen on several interfaces are merged.
func Discover(ctx context.Context, timeout time.Duration) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	browseErr := make(chan error, 1)
	go func() {
		browseErr <- zeroconf.Browse(ctx, ServiceType, Domain, entries, removed)
	}()

	found := make(map[string]*Device)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return collect(found), nil
			}
			d := deviceFromEntry(entry)
			if existing, ok := found[d.Name]; ok {
				existing.Addrs = mergeAddrs(existing.Addrs, d.Addrs)
				continue
			}
			found[d.Name] = &d
		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			delete(found, entry.Instance)
		case err := <-browseErr:
			if err != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("mdns browse: %w", err)
			}
			browseErr = nil
		case <-ctx.Done():
			return collect(found), nil
		}
	}
}

func collect(found map[string]*Device) []Device {
	out := make([]Device, 0, len(found))
	for _, d := range found {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func mergeAddrs(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range more {
		if !seen[a] {
			existing = append(existing, a)
			seen[a] = true
		}
	}
	return existing
}

// ResolveHost returns host unchanged unless it is empty or "auto", or
// discover is set, in which case the first discovered controller is used.
func ResolveHost(ctx context.Context, host string, discover bool, timeout time.Duration) (string, error) {
	if !discover && host != "" && host != HostAuto {
		return host, nil
	}
	devices, err := Discover(ctx, timeout)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", ErrNoController
	}
	return devices[0].Address(), nil
}
