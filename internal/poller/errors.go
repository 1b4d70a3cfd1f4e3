// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package poller

import "errors"

var (
	// errAlreadyPolling rejects Start on a poller whose loop is active.
	errAlreadyPolling = errors.New("poller already running")

	// errInert rejects Start on a poller that has stopped or reached a
	// terminal state; a Poller instance tracks one job, once.
	errInert = errors.New("poller is inert; create a new poller per job")
)
