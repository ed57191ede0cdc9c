package lifecycle

// DoneChan is closed exactly once to signal that some background
// activity has finished.
type DoneChan chan struct{}

// DoneFunc starts (or has already started) the wait for some
// background activity and returns a channel that closes when it ends.
type DoneFunc func() DoneChan
