package engine

import "errors"

// ErrInvalidAction is returned when an agent or planner action id falls
// outside the declared action space. It is fatal for the offending turn;
// the episode driver decides whether to terminate. It is never retried:
// every step is a deterministic function of state plus one random draw,
// so the failure is not transient.
var ErrInvalidAction = errors.New("action outside declared range")
