// Package server exposes a session over HTTP: a JSON API for edits and
// exports, a server-rendered editor page and a websocket feed that pushes the
// compiled schema after every change.
package server
