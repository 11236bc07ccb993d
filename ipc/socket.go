package ipc

import (
	"context"
	"net"
	"time"
)

// Listener accepts stream connections.
type Listener struct {
	l net.Listener
}

// Listen announces on a stream network ("tcp", "tcp4", "tcp6", "unix").
func Listen(network, addr string) (*Listener, error) {
	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, wrap("socket.listen", err)
	}
	return &Listener{l: l}, nil
}

// Accept waits for the next connection.
func (l *Listener) Accept() (*Conn, error) {
	c, err := l.l.Accept()
	if err != nil {
		return nil, wrap("socket.accept", err)
	}
	return &Conn{c: c}, nil
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr { return l.l.Addr() }

// Close stops listening; a blocked Accept fails with InvalidState.
func (l *Listener) Close() error {
	return wrap("socket.close", l.l.Close())
}

// Conn is a connected stream socket.
type Conn struct {
	c net.Conn
}

// Dial connects to addr, bounded by ctx.
func Dial(ctx context.Context, network, addr string) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, wrap("socket.dial", err)
	}
	return &Conn{c: c}, nil
}

func (c *Conn) Read(b []byte) (int, error) {
	n, err := c.c.Read(b)
	return n, wrap("socket.read", err)
}

func (c *Conn) Write(b []byte) (int, error) {
	n, err := c.c.Write(b)
	return n, wrap("socket.write", err)
}

// SetDeadline bounds pending and future Reads and Writes.
func (c *Conn) SetDeadline(t time.Time) error {
	return wrap("socket.deadline", c.c.SetDeadline(t))
}

// Addr returns the local address.
func (c *Conn) Addr() net.Addr { return c.c.LocalAddr() }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

func (c *Conn) Close() error {
	return wrap("socket.close", c.c.Close())
}

// PacketConn is a datagram socket.
type PacketConn struct {
	pc net.PacketConn
}

// ListenPacket announces on a datagram network ("udp", "udp4", "udp6", "unixgram").
func ListenPacket(network, addr string) (*PacketConn, error) {
	pc, err := net.ListenPacket(network, addr)
	if err != nil {
		return nil, wrap("socket.listen", err)
	}
	return &PacketConn{pc: pc}, nil
}

// ReadFrom reads one datagram.
func (p *PacketConn) ReadFrom(b []byte) (int, net.Addr, error) {
	n, addr, err := p.pc.ReadFrom(b)
	return n, addr, wrap("socket.read", err)
}

// WriteTo sends one datagram to addr.
func (p *PacketConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	n, err := p.pc.WriteTo(b, addr)
	return n, wrap("socket.write", err)
}

// SetReadDeadline bounds pending and future ReadFrom calls.
func (p *PacketConn) SetReadDeadline(t time.Time) error {
	return wrap("socket.deadline", p.pc.SetReadDeadline(t))
}

// Addr returns the local address.
func (p *PacketConn) Addr() net.Addr { return p.pc.LocalAddr() }

func (p *PacketConn) Close() error {
	return wrap("socket.close", p.pc.Close())
}
