package testutil

import "time"

// PollingInterval is the default interval between condition checks in
// Poll and WaitForState.
const PollingInterval = 5 * time.Millisecond

// AsyncTimeout bounds waits on routine goroutines under FastTiming. Routines
// finish in tens of milliseconds there; the margin absorbs scheduler noise
// on loaded CI machines.
const AsyncTimeout = 5 * time.Second
