package coordinator

import (
	"errors"
	"fmt"
)

// SessionNamespace is the namespace the session convenience helpers write
// to. It must be part of the configured namespace set for them to work.
const SessionNamespace = "session"

// SaveSessionContext stores arbitrary session context under the session ID.
func (c *Coordinator) SaveSessionContext(sessionID string, context any) error {
	return c.Store(SessionNamespace, sessionID, context)
}

// LoadSessionContext decodes the stored session context into out.
func (c *Coordinator) LoadSessionContext(sessionID string, out any) error {
	return c.Retrieve(SessionNamespace, sessionID, out)
}

// AddSessionDecision appends a decision to the session's decision log,
// creating the log on first use.
func (c *Coordinator) AddSessionDecision(sessionID, decision string) error {
	key := fmt.Sprintf("%s:decisions", sessionID)

	var decisions []string
	if err := c.Retrieve(SessionNamespace, key, &decisions); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	decisions = append(decisions, decision)
	return c.Store(SessionNamespace, key, decisions)
}
