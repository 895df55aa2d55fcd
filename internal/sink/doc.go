// Package sink resolves the configured alert delivery targets and ships
// normalized alerts to them.
//
// # Contract
//
// The Registry lists DeceptionAlertSink objects fresh on every pipeline run
// and resolves their credential Secrets; a sink with missing or malformed
// configuration yields no entry and is skipped, never fatal.
//
// The Dispatcher delivers each alert to every resolved sink independently:
// one unreachable sink must not block delivery to the others, and a failed
// delivery must not abort processing of subsequent alerts. Delivery is
// at-least-once; the deterministic alert ID lets the receiving backend
// deduplicate redeliveries.
//
// The only supported backend is the Dynatrace security-event ingest API.
// The cluster identifier attached to each payload (the kube-system
// namespace UID) is fetched lazily and cached for the process lifetime.
package sink
