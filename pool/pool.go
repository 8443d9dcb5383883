// Package pool provides a generic get/put object pool, used by this module's
// Worker Launcher to reuse the []byte scan buffers its per-worker stdout
// readers bufio.Scan into, bounded to ProcessesToStart capacity rather than
// a worker-object pool.
package pool

// Pool is an interface that defines methods on a pool of reusable objects.
type Pool interface {
	// Get returns an object from the pool, creating one if none is available.
	// A fixed pool creates at most its capacity of objects; once that many
	// exist, Get waits until one is returned with Put.
	Get() interface{}

	// Put returns an object back to the pool.
	Put(interface{})
}
