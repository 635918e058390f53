package emit

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/lowhung/buswatch/types"
)

// TCPEmitter opens a fresh connection per emission, writes compact JSON
// followed by "\n", and closes. There is no framing beyond the newline, no
// handshake, and no heartbeat.
type TCPEmitter struct {
	Addr    string
	Timeout time.Duration
}

// NewTCPEmitter returns an Emitter that dials addr fresh for every snapshot.
// A zero timeout defaults to 5s.
func NewTCPEmitter(addr string, timeout time.Duration) *TCPEmitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TCPEmitter{Addr: addr, Timeout: timeout}
}

func (e *TCPEmitter) Emit(snap types.Snapshot) error {
	conn, err := net.DialTimeout("tcp", e.Addr, e.Timeout)
	if err != nil {
		return fmt.Errorf("buswatch: dial %s: %w", e.Addr, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(e.Timeout))
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("buswatch: marshal snapshot: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("buswatch: write to %s: %w", e.Addr, err)
	}
	return nil
}
