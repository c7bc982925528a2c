/*
Package observability provides tools for monitoring the towerbench engine.

It turns lifecycle hooks into Prometheus metrics and aggregates finished episode
results into an in-memory summary for reports.
*/
package observability
