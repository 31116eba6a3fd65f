// Package at frames the byte stream of a modem command channel into text
// lines and detects the final result codes that end a command's response.
package at

const (
	// Terminal Control
	CRLF = "\r\n"
	CR   = '\r'
	LF   = '\n'

	// Response Codes
	OK    = "OK"
	ERROR = "ERROR"
)
