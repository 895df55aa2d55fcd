// Package pipeline orchestrates the alert ingestion-and-dispatch runs and
// debounces the inbound triggers that start them.
//
// # Contract
//
// Triggers are an idempotent "alerts may be ready" signal. The Debouncer
// coalesces a burst of triggers into one run: every trigger overwrites a
// single atomic latest-trigger register, and a dedicated worker executes a
// run only once the debounce interval has passed without a newer trigger
// superseding it. A maximum-deferral cap guarantees a run eventually fires
// even under a continuous trigger stream.
//
// One run reads the trailing agent log window, maps new events to alerts,
// drops self-test alerts, writes every surviving alert as a single-line
// JSON record to the local alert log, and hands it to the sink dispatcher.
// At most one run is live at a time, so the run path needs no locking
// around the dedup cache or sink registry.
package pipeline
