package core

import "hash/crc32"

// Apply runs ops against contents the way the editing service commits them:
// the first operation that runs past the buffer aborts the whole log.
// Unknown operations are ignored.
func Apply(contents string, ops []Op) (string, error) {
	buf := []rune(contents)
	cursor := 0

	for i, op := range ops {
		switch o := op.(type) {
		case Skip:
			if o.Count+cursor > len(buf) {
				return "", &BoundsError{Index: i, Op: o, Err: ErrSkipPastBounds}
			}
			cursor += o.Count
		case Delete:
			if o.Count+cursor > len(buf) {
				return "", &BoundsError{Index: i, Op: o, Err: ErrDeletePastBounds}
			}
			buf = splice(buf, cursor, cursor+o.Count, nil)
		case Insert:
			chars := []rune(o.Chars)
			buf = splice(buf, cursor, cursor, chars)
			cursor += len(chars)
		case Unknown:
		}
	}

	return string(buf), nil
}

// Checksum is the IEEE CRC-32 of the UTF-8 encoding of text.
func Checksum(text string) uint32 {
	return crc32.ChecksumIEEE([]byte(text))
}
