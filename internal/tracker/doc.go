// Package tracker records, for every unit of tracked data, where it came from.
//
// # Trackers
//
// A Tracker stands for some content (a buffer, a stream, a string). Three
// variants exist:
//
//   - OriginTracker: terminal, append-only content with no source (a file, a
//     literal, a socket's input).
//   - DefaultTracker: mutable, a sparse ordered map of TrackPart entries
//     saying which range of which other tracker each of its ranges came from.
//   - TagTracker: terminal label without content.
//
// # Writing provenance
//
//	t.SetSource(targetIndex, length, source, sourceIndex, growth.None)
//
// The last write wins. Adjacent writes that continue each other in the same
// source merge into one entry. When the source is itself a DefaultTracker it
// is resolved first, so entries always point at terminal trackers:
//
//	middle.SetSource(0, 10, file, 100, growth.None)
//	out.SetSource(0, 5, middle, 3, growth.None) // out[0,5) -> file@103
//
// # Reading provenance
//
// PushSourceTo is visitor-style: the tracker reports its sources for a range
// as SetSource calls on a Writable. The snapshot package builds on it.
//
// # Concurrency
//
// Every tracker has its own RWMutex and writers are serialized per tracker.
// Length is readable without locking. No operation holds two tracker locks
// at once, except InitTwin, which takes them in id order.
package tracker
