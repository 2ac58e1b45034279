// Package ntp is a minimal SNTP client, enough to set a real time clock from
// a network time server.
package ntp // import "github.com/ajanata/rtc/ntp"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// PacketSize is the size of an SNTP request and reply.
const PacketSize = 48

// DefaultServer is used when Client.Server is empty.
const DefaultServer = "pool.ntp.org"

// DefaultTimeout is used when Client.Timeout is zero.
const DefaultTimeout = 2 * time.Second

// seconds from 1900-01-01 to 1970-01-01
const unixOffset = 2208988800

var (
	ErrNoReply     = errors.New("ntp: no reply")
	ErrKissOfDeath = errors.New("ntp: server sent kiss-of-death")
	ErrNotServer   = errors.New("ntp: reply is not from a server")
	ErrNoTimestamp = errors.New("ntp: reply has no transmit timestamp")
)

// Request fills b with a client request, version 4.
func Request(b *[PacketSize]byte) {
	*b = [PacketSize]byte{}
	b[0] = 0b11_100_011 // LI unsynchronized, version 4, mode 3 (client)
	b[2] = 6            // polling interval
	b[3] = 0xEC         // precision
	// reference ID "1N14"
	b[12] = 49
	b[13] = 0x4E
	b[14] = 49
	b[15] = 52
}

// Parse returns the transmit timestamp of a server reply.
func Parse(b *[PacketSize]byte) (time.Time, error) {
	if mode := b[0] & 0x07; mode != 4 && mode != 5 {
		return time.Time{}, fmt.Errorf("%w: mode %d", ErrNotServer, mode)
	}
	if b[1] == 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrKissOfDeath, b[12:16])
	}
	// the transmit timestamp starts at byte 40: seconds since 1900, then a
	// binary fraction of a second
	secs := uint32(b[40])<<24 | uint32(b[41])<<16 | uint32(b[42])<<8 | uint32(b[43])
	frac := uint32(b[44])<<24 | uint32(b[45])<<16 | uint32(b[46])<<8 | uint32(b[47])
	if secs == 0 && frac == 0 {
		return time.Time{}, ErrNoTimestamp
	}
	unix := int64(secs) - unixOffset
	if secs&0x8000_0000 == 0 {
		// era 1, from 2036-02-07
		unix += 1 << 32
	}
	nsec := int64(frac) * int64(time.Second) >> 32
	return time.Unix(unix, nsec).UTC(), nil
}

// Query sends one request on conn and returns the server time from the
// reply. Reads of zero bytes are retried; conn is expected to enforce its own
// deadline.
func Query(conn io.ReadWriter) (time.Time, error) {
	var b [PacketSize]byte
	Request(&b)
	if _, err := conn.Write(b[:]); err != nil {
		return time.Time{}, fmt.Errorf("ntp: sending request: %w", err)
	}
	b = [PacketSize]byte{}
	for {
		n, err := conn.Read(b[:])
		switch {
		case err == io.EOF:
			return time.Time{}, ErrNoReply
		case err != nil:
			return time.Time{}, fmt.Errorf("ntp: reading reply: %w", err)
		case n == 0:
			continue // no packet received yet
		case n != PacketSize:
			return time.Time{}, fmt.Errorf("ntp: expected packet size of %d: %d", PacketSize, n)
		}
		return Parse(&b)
	}
}

// Client queries a server over UDP.
type Client struct {
	// Server is a host name or address, with an optional port.
	Server  string
	Timeout time.Duration

	// Dial defaults to a net.Dialer.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

// Now asks the server for the current time.
func (c Client) Now(ctx context.Context) (time.Time, error) {
	server := c.Server
	if server == "" {
		server = DefaultServer
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "123")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dial := c.Dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}
	conn, err := dial(ctx, "udp", server)
	if err != nil {
		return time.Time{}, fmt.Errorf("ntp: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return time.Time{}, fmt.Errorf("ntp: %w", err)
		}
	}
	return Query(conn)
}
