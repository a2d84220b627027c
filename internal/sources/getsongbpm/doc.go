// Package getsongbpm implements a client for the GetSongBPM search API,
// which serves community-sourced tempo and key data behind a free API key.
// Field names vary between endpoint generations, so the response types keep
// both spellings and expose accessor helpers.
package getsongbpm
