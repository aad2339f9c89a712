// Package distrender implements the ClientServer task executor: one
// controller rank plus W worker ranks exchanging work descriptors and
// rendered pixel blocks over an abstract process-group message layer.
// The collective-transport shape follows the tagged send/recv/broadcast
// pattern common to MPI-style renderers. Transport is the boundary
// interface a real network transport would implement; only the
// in-process, channel-backed implementation lives in this module.
package distrender

import (
	"errors"
)

// Tag names one kind of message over the process group.
type Tag int

const (
	TagInitSize Tag = iota
	TagInitData
	TagIntroduce
	TagSendNCam
	TagSendNLine
	TagSendNSize
	TagReceiveNCam
	TagReceiveNLine
	TagReceiveNSize
	TagReceiveData
	TagEndGather
	TagClosed
)

func (t Tag) String() string {
	switch t {
	case TagInitSize:
		return "INIT_SIZE"
	case TagInitData:
		return "INIT_DATA"
	case TagIntroduce:
		return "INTRODUCE"
	case TagSendNCam:
		return "SEND_NCAM"
	case TagSendNLine:
		return "SEND_NLINE"
	case TagSendNSize:
		return "SEND_NSIZE"
	case TagReceiveNCam:
		return "RECEIVE_NCAM"
	case TagReceiveNLine:
		return "RECEIVE_NLINE"
	case TagReceiveNSize:
		return "RECEIVE_NSIZE"
	case TagReceiveData:
		return "RECEIVE_DATA"
	case TagEndGather:
		return "END_GATHER"
	case TagClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Message is one envelope exchanged over Transport. Payload is opaque to
// the transport itself; this module's in-process implementation passes
// it by reference rather than marshaling to bytes — a real network
// transport would define its own wire encoding. The init-blob's on-disk
// layout is this module's own to define, in distrender/initblob.go.
type Message struct {
	Tag     Tag
	Rank    int
	Payload any
}

// ErrClosed is returned by Recv/TryRecv once a rank's inbox has been
// closed (the controller is done dispatching and every worker has been
// sent CLOSED).
var ErrClosed = errors.New("distrender: transport closed")

// Transport abstracts the collective process-group message layer:
// Send/Recv are point-to-point, Broadcast fans one message out to every
// other rank, Rank/Size report addressing info. Workers call the
// blocking Recv; the controller polls with TryRecv so it can also watch
// for heartbeat timeouts between messages.
type Transport interface {
	Rank() int
	Size() int
	Send(to int, msg Message) error
	Recv(from int) (Message, error)
	TryRecv(from int) (Message, bool, error)
	Broadcast(msg Message) error
	Close()
}

const anyRank = -1

// hub is the shared rendezvous point every ChannelTransport endpoint
// sends into and receives from.
type hub struct {
	inboxes []chan Message
}

// NewChannelTransports returns size Transport endpoints (rank 0 is
// conventionally the controller) wired to a shared in-process hub,
// standing in for a real network transport in tests and the
// single-machine --mpi-procs deployment.
func NewChannelTransports(size int) []Transport {
	h := &hub{inboxes: make([]chan Message, size)}
	for i := range h.inboxes {
		h.inboxes[i] = make(chan Message, 64)
	}
	ts := make([]Transport, size)
	for i := range ts {
		ts[i] = &channelTransport{rank: i, hub: h}
	}
	return ts
}

type channelTransport struct {
	rank int
	hub  *hub
}

func (c *channelTransport) Rank() int { return c.rank }
func (c *channelTransport) Size() int { return len(c.hub.inboxes) }

func (c *channelTransport) Send(to int, msg Message) error {
	msg.Rank = c.rank
	c.hub.inboxes[to] <- msg
	return nil
}

func (c *channelTransport) Recv(from int) (Message, error) {
	msg, ok := <-c.hub.inboxes[c.rank]
	if !ok {
		return Message{}, ErrClosed
	}
	if from != anyRank && msg.Rank != from {
		// The in-process hub never reorders across senders for this
		// protocol's usage (each rank only ever awaits the controller
		// or only ever awaits its own workers), so a mismatch here
		// indicates a protocol violation rather than something to
		// silently filter.
		return msg, nil
	}
	return msg, nil
}

func (c *channelTransport) TryRecv(from int) (Message, bool, error) {
	select {
	case msg, ok := <-c.hub.inboxes[c.rank]:
		if !ok {
			return Message{}, false, ErrClosed
		}
		return msg, true, nil
	default:
		return Message{}, false, nil
	}
}

func (c *channelTransport) Broadcast(msg Message) error {
	for to := range c.hub.inboxes {
		if to == c.rank {
			continue
		}
		if err := c.Send(to, msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *channelTransport) Close() {
	close(c.hub.inboxes[c.rank])
}
