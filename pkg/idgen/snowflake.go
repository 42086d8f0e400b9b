// Package idgen allocates job identifiers that are unique across replicas
// sharing a node ID space.
package idgen

import (
	"errors"
	"strconv"
	"sync"
)

const (
	// Layout of a 64-bit ID:
	// 1 bit: unused (sign bit)
	// 41 bits: timestamp in milliseconds since Epoch
	// 10 bits: node ID
	// 12 bits: per-millisecond sequence

	nodeBits     = 10
	sequenceBits = 12

	maxNodeID   = -1 ^ (-1 << nodeBits)
	maxSequence = -1 ^ (-1 << sequenceBits)

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits

	// Epoch is 2024-01-01 00:00:00 UTC.
	Epoch = 1704067200000
)

var (
	ErrNodeIDTooLarge = errors.New("node ID out of range")
	ErrClockMovedBack = errors.New("clock moved backwards")
)

// Snowflake generates unique, time-ordered 64-bit IDs.
type Snowflake struct {
	mu       sync.Mutex
	clock    Clock
	nodeID   int64
	lastTime int64
	sequence int64
}

// New creates a generator for nodeID. A nil clock uses the system clock.
func New(nodeID int64, clock Clock) (*Snowflake, error) {
	if nodeID < 0 || nodeID > int64(maxNodeID) {
		return nil, ErrNodeIDTooLarge
	}

	if clock == nil {
		clock = SystemClock{}
	}

	return &Snowflake{
		clock:    clock,
		nodeID:   nodeID,
		lastTime: -1,
	}, nil
}

// Next generates the next ID.
func (s *Snowflake) Next() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now < s.lastTime {
		return 0, ErrClockMovedBack
	}

	if now == s.lastTime {
		s.sequence = (s.sequence + 1) & int64(maxSequence)
		if s.sequence == 0 {
			// Sequence exhausted, spin until the next millisecond.
			for now <= s.lastTime {
				now = s.clock.Now()
			}
		}
	} else {
		s.sequence = 0
	}

	s.lastTime = now

	return ((now - Epoch) << timestampShift) |
		(s.nodeID << nodeShift) |
		s.sequence, nil
}

// NextString returns the next ID in base 36, which keeps directory names
// and response headers short.
func (s *Snowflake) NextString() (string, error) {
	id, err := s.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// Decompose splits an ID into its timestamp (ms since the Unix epoch), node
// and sequence parts.
func Decompose(id int64) (timestampMS, nodeID, sequence int64) {
	timestampMS = (id >> timestampShift) + Epoch
	nodeID = (id >> nodeShift) & int64(maxNodeID)
	sequence = id & int64(maxSequence)
	return timestampMS, nodeID, sequence
}
