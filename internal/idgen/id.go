package idgen

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewGuestID returns a random UUID string for a guest record.
func NewGuestID() string {
	return uuid.NewString()
}

// NewBanID returns a KSUID string. KSUIDs sort by creation time, which keeps
// ban ids in the same order as the registry.
func NewBanID() string {
	return ksuid.New().String()
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewEventID generates a snowflake id for board events using the node from
// SNOWFLAKE_NODE (default 1). If the node cannot be set up it falls back to a
// KSUID so an id is always returned.
func NewEventID() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if env := os.Getenv("SNOWFLAKE_NODE"); env != "" {
			if v, err := strconv.ParseInt(env, 10, 64); err == nil {
				nodeID = v
			}
		}
		node, _ = snowflake.NewNode(nodeID)
	})
	if node == nil {
		return ksuid.New().String()
	}
	return node.Generate().String()
}
