package ical

import "unicode/utf8"

const maxLineOctets = 75

// Transform a line writer into one that terminates every line with CRLF and
// folds lines longer than 75 octets. Continuation lines start with a single
// space, and a multi-byte character is never split. Example (6-octet lines):
//
//	`Hello,
//	 world!`
func fold75Writer(writer func(string) error) func(string) error {
	return func(line string) error {
		for len(line) > maxLineOctets {
			cut := maxLineOctets
			for cut > 1 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if err := writer(line[:cut] + "\r\n"); err != nil {
				return err
			}
			// the leading space counts towards the octet limit
			line = " " + line[cut:]
		}
		return writer(line + "\r\n")
	}
}
