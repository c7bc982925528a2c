// Package http exposes episodes over a JSON HTTP API so remote agents can play turn by turn.
package http
