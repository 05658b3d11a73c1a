// Package mockserver implements the FilmForum HTTP API in memory.
//
// It serves a fixed film catalog, registers accounts with bcrypt-hashed
// passwords and issues HS256 tokens, replying with the same bodies the real
// API uses, including the plain-text conflict messages. It backs the serve
// command and the end-to-end tests of the filmapi client.
package mockserver
