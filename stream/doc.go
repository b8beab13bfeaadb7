// Package stream provides the hot multicast primitives the rest of this
// module is built on: Subject, BehaviorSubject, a handful of standard
// reactive combinators (CombineLatest2, DistinctUntilChanged), and the
// three asynchronous suspension points the spec calls out — ToAsyncSequence,
// FirstAsync, and Interval.
//
// Delivery is always synchronous and in-process: Next snapshots the
// current subscriber list under a lock and invokes observers outside the
// lock, so an observer that subscribes or unsubscribes from within a
// callback never corrupts the in-progress delivery and is never
// re-entered for the event currently being delivered.
package stream
