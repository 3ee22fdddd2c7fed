// Package network waits for the host's network link before anything talks
// to the broker.
package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/connstate"
)

// ProbeFunc reports nil when the link is usable.
type ProbeFunc func(ctx context.Context) error

// Connector blocks until its probe reports the link up. It never gives up;
// cancellation of the context is the only way out.
type Connector struct {
	probe    ProbeFunc
	interval time.Duration
	logger   *slog.Logger
	state    connstate.Value
}

func NewConnector(probe ProbeFunc, interval time.Duration, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Connector{probe: probe, interval: interval, logger: logger}
}

// Connect returns nil once the link is up, or ctx.Err() if ctx ends first.
func (c *Connector) Connect(ctx context.Context) error {
	err := c.probe(ctx)
	if err == nil {
		if prev := c.state.Store(connstate.Connected); prev != connstate.Connected {
			c.logger.Info("network: link up")
		}
		return nil
	}

	if prev := c.state.Store(connstate.Connecting); prev == connstate.Connected {
		c.logger.Warn("network: link lost", "error", err)
	} else {
		c.logger.Info("network: waiting for link", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	attempts := 1
	for {
		select {
		case <-ctx.Done():
			c.state.Store(connstate.Disconnected)
			return ctx.Err()
		case <-ticker.C:
		}

		attempts++
		if err := c.probe(ctx); err != nil {
			c.logger.Debug("network: still down", "attempt", attempts, "error", err)
			continue
		}
		c.state.Store(connstate.Connected)
		c.logger.Info("network: link up", "attempts", attempts)
		return nil
	}
}

func (c *Connector) State() connstate.State {
	return c.state.Load()
}

var errNoUsableInterface = errors.New("no usable network interface")

// InterfaceProbe reports the link up when the named interface is up and has a
// non-loopback unicast address. An empty name accepts any such interface.
func InterfaceProbe(name string) ProbeFunc {
	return func(context.Context) error {
		if name != "" {
			iface, err := net.InterfaceByName(name)
			if err != nil {
				return fmt.Errorf("interface %s: %w", name, err)
			}
			return usable(*iface)
		}

		ifaces, err := net.Interfaces()
		if err != nil {
			return fmt.Errorf("list interfaces: %w", err)
		}
		for _, iface := range ifaces {
			if usable(iface) == nil {
				return nil
			}
		}
		return errNoUsableInterface
	}
}

func usable(iface net.Interface) error {
	if iface.Flags&net.FlagLoopback != 0 {
		return fmt.Errorf("interface %s: loopback", iface.Name)
	}
	if iface.Flags&net.FlagUp == 0 {
		return fmt.Errorf("interface %s: down", iface.Name)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return fmt.Errorf("interface %s addrs: %w", iface.Name, err)
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipnet.IP; !ip.IsLoopback() && (ip.IsGlobalUnicast() || ip.IsLinkLocalUnicast()) {
			return nil
		}
	}
	return fmt.Errorf("interface %s: no address", iface.Name)
}
