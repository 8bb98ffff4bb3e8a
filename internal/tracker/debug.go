package tracker

// debugChecks re-validates the whole sparse map after every write. Tests
// switch it on.
var debugChecks = false
