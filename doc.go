/*
Package unicodeindex provides random access to the characters of a large,
memory-mapped UTF-8 text by character index instead of byte offset.

Converting a character index into a byte offset requires decoding every byte
in front of the character. A UnicodeIndex amortizes this cost by remembering
checkpoints: the byte offset and character index of each line start it has
come across. A query is served by decoding just the one line which contains
the requested character, if that line is already known, or by decoding
forward from the last checkpoint, recording new checkpoints on the way.
Sequential or locally clustered queries therefore decode every byte of the
text at most once, plus the bytes of the line a character is located in.

Malformed UTF-8 is never skipped or replaced: a query whose path crosses an
invalid byte sequence fails with ErrInvalidChar. Bytes behind the requested
character are not inspected.

A UnicodeIndex is not safe for concurrent use. Queries mutate the checkpoint
cache, even though they look like reads. Clients either serialize access or
create one index per goroutine over the same immutable buffer.

Usage

	ui, err := unicodeindex.Open("path/to/file.txt")
	if err != nil {
		...
	}
	defer ui.Close()
	r, err := ui.CharacterAt(1000)

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package unicodeindex

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'unicodeindex'
func tracer() tracing.Trace {
	return tracing.Select("unicodeindex")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
