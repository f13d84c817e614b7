package translator

import (
	"fmt"

	"github.com/google/uuid"
)

// newMessageID generates an Anthropic-style message id.
func newMessageID() string {
	return "msg_" + uuid.NewString()
}

// newSyntheticToolID generates an id for a tool call the upstream never
// assigned one to, or for one extracted from XML text.
func newSyntheticToolID(seq int) string {
	return fmt.Sprintf("tool_%s_%d", uuid.NewString(), seq)
}
