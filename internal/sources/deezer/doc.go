// Package deezer implements a client for the public Deezer search API, which
// reports a measured tempo for many recordings and needs no credentials.
package deezer
