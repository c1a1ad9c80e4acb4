/*
Package latch provides buffered data binding between typed properties and
editable fields, with validation and commit/discard transactions.

A Property holds one typed value and notifies listeners when it changes. A
Field edits a value: on its own, or bound to a Property data source that it
reads from and writes to. Validators decide which values are acceptable, and
a CompositeErrorMessage gathers everything that is wrong with a field into a
single reportable error.

# Properties

	port, err := latch.NewObjectProperty(8080)
	port.SetValue("9090")   // converted to int through its textual form
	port.SetReadOnly(true)
	port.SetValue(1)        // *latch.ReadOnlyError

# Buffering

A bound field writes through by default: every successful SetValue is written
to the source immediately. Switch write-through off to buffer changes:

	field := latch.NewField().Named("port")
	field.SetPropertyDataSource(port)
	field.SetWriteThrough(false)

	field.SetValue(9090)    // field.IsModified() == true, port unchanged
	field.Commit()          // port.Value() == 9090
	field.SetValue(1)
	field.Discard()         // back to 9090

Failures while writing to the source are returned from SetValue and Commit
as a *latch.SourceError and retained by the field until the next successful
transfer; failures while reading are only retained.

# Validation

	field.AddValidator(latch.NewRangeValidator("{0} is out of range", 1, 65535))
	field.SetRequired(true)
	field.SetRequiredError("port is required")

	if err := field.Validate(); err != nil {
	    var invalid *latch.InvalidValueError
	    errors.As(err, &invalid)
	}

Invalid values may be set but are not written to the source unless
SetInvalidCommitted(true) is used. SetInvalidAllowed(false) rejects them
outright.

# State Machine

A field is in one of four derived states:

  - Unbound: no data source
  - Synced: bound, no local changes
  - Modified: bound, local changes not yet written
  - Failed: the last source read or write failed

# Observability

Lifecycle events are emitted as capitan signals (see signals.go), and a
MetricsProvider receives state transitions, commits and discards. The
pkg/prometheus package provides a Prometheus implementation.

# Adapters

  - pkg/file: a property stored in a file, watched with fsnotify
  - pkg/bolt: properties stored in a bbolt database
  - pkg/prometheus: MetricsProvider backed by Prometheus collectors

The file and bolt adapters accept SourceOption middleware for their I/O:

	store, err := bolt.Open("settings.db", bolt.WithPipeline(
	    latch.WithBackoff(3, 10*time.Millisecond),
	    latch.WithTimeout(time.Second),
	))
*/
package latch
