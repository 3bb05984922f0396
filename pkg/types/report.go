package types

// Reporter receives errors that a collaborator has handled but wants
// recorded. It is passed explicitly to whoever needs it; there is no
// process-wide instance.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(err error)

// Report calls f.
func (f ReporterFunc) Report(err error) { f(err) }

// NopReporter discards every error.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(error) {}
