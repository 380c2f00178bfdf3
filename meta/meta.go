// meta/meta.go
package meta

import "time"

// MAX_NODES is the size of the node identifier space shared by the tree arena
// and the accelerator's 10-bit node id field.
const MAX_NODES = 1024

// NUM_ACTIONS is the number of distinct action ids (3-bit action field).
const NUM_ACTIONS = 8

// WEIGHT_SCALE is the default fixed-point multiplier applied to weights before
// they are sent to the accelerator.
const WEIGHT_SCALE = 1

// POLL_INTERVAL is how often a session re-checks the ready/ack signals.
const POLL_INTERVAL = 50 * time.Microsecond

// LISTEN_ADDR is the default address of the accelerator bridge.
const LISTEN_ADDR = ":9000"

// BENCH_SIZES are the tree sizes used by timing runs.
var BENCH_SIZES = []int{16, 64, 256, 1024}

// BENCH_REPEATS is the number of trees generated per size.
const BENCH_REPEATS = 10
