// Package helper provides test fixtures for banks and spies for the bank observability interfaces.
//
// The spies capture log records, metric calls and spans so tests can assert on the
// instrumentation without an OpenTelemetry SDK.
package helper
