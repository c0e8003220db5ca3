// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

// IDSource hands out conversation ids. Ids must be unique for the lifetime
// of the process and should grow over time.
type IDSource interface {
	NextID() int64
}

// SnowflakeIDs generates time-ordered ids from a snowflake node.
type SnowflakeIDs struct {
	node *snowflake.Node
}

// NewSnowflakeIDs creates a generator for the given node number (0-1023).
func NewSnowflakeIDs(nodeID int64) (*SnowflakeIDs, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeIDs{node: node}, nil
}

// NextID implements IDSource.
func (s *SnowflakeIDs) NextID() int64 {
	return s.node.Generate().Int64()
}

// SequentialIDs counts up from a starting value. Tests use it for
// predictable ids.
type SequentialIDs struct {
	next atomic.Int64
}

// NewSequentialIDs returns a source whose first id is start.
func NewSequentialIDs(start int64) *SequentialIDs {
	s := &SequentialIDs{}
	s.next.Store(start)
	return s
}

// NextID implements IDSource.
func (s *SequentialIDs) NextID() int64 {
	return s.next.Add(1) - 1
}
