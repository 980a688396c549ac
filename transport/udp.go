// Package transport is the datagram socket wrapper the consensus core
// treats as an external collaborator (see raft.Sender). It owns exactly
// one outbound and one inbound UDP endpoint per replica: every message is
// sent to a shared simulator port on localhost, and every message this
// replica receives arrives on its own separately-bound ephemeral port.
//
// This mirrors the teacher's own split between the raft core and its
// injected RPCServer/RPCClient collaborators (raft/rpc_server.go,
// raft/rpc_client.go in the teacher), just retargeted at UDP/JSON instead
// of gRPC, per the wire contract in spec §6.
package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"raftkv/raft"
)

// maxDatagram is large enough for any datagram this protocol defines given
// the NumBuffer cap on appended entries (§5).
const maxDatagram = 65535

// Conn is one replica's datagram endpoint. It implements raft.Sender.
type Conn struct {
	sharedAddr *net.UDPAddr
	sock       *net.UDPConn
}

// Dial opens an ephemeral receive endpoint and resolves the shared
// simulator port every outbound message is sent to.
func Dial(simulatorPort int) (*Conn, error) {
	shared, err := net.ResolveUDPAddr("udp", fmt.Sprintf("localhost:%d", simulatorPort))
	if err != nil {
		return nil, fmt.Errorf("resolve simulator port: %w", err)
	}

	sock, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		return nil, fmt.Errorf("bind receive endpoint: %w", err)
	}

	return &Conn{sharedAddr: shared, sock: sock}, nil
}

// Port reports the ephemeral port this replica is listening on.
func (c *Conn) Port() int {
	return c.sock.LocalAddr().(*net.UDPAddr).Port
}

// Send encodes msg as JSON and emits it as a single datagram to the shared
// simulator port (§6).
func (c *Conn) Send(msg raft.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	_, err = c.sock.WriteToUDP(data, c.sharedAddr)
	return err
}

// Recv blocks for up to timeout for one datagram. ok is false on a read
// timeout or a malformed datagram; callers are expected to treat both the
// same as "nothing arrived this tick" (§7: ignore malformed messages,
// continue the loop).
func (c *Conn) Recv(timeout time.Duration) (msg raft.Message, ok bool, err error) {
	if err := c.sock.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return raft.Message{}, false, fmt.Errorf("set read deadline: %w", err)
	}

	buf := make([]byte, maxDatagram)
	n, _, err := c.sock.ReadFromUDP(buf)
	if err != nil {
		if ne, isNet := err.(net.Error); isNet && ne.Timeout() {
			return raft.Message{}, false, nil
		}
		return raft.Message{}, false, fmt.Errorf("read datagram: %w", err)
	}

	if err := json.Unmarshal(buf[:n], &msg); err != nil {
		return raft.Message{}, false, nil
	}
	return msg, true, nil
}

// Close releases the receive endpoint.
func (c *Conn) Close() error {
	return c.sock.Close()
}
