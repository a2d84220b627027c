// Package itunes implements a client for the iTunes Search API, used to
// locate 30-second audio previews. The preview bytes feed a pluggable audio
// analyzer; this package only finds and downloads them.
package itunes
