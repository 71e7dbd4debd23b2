package pipeline

import (
	"github.com/sashajenner/pod5-file-format/internal/pod5"
)

// Message is the closed set of items workers emit to the supervisor over the
// data channel. For every input file the supervisor observes StartFile, then
// zero or more Batch, then exactly one EndFile; nothing for that file
// arrives after its EndFile. No ordering holds across files.
type Message interface {
	message()
}

// StartFile announces a file before its first batch, with the file's
// declared read count (taken from the header, no reads decoded).
type StartFile struct {
	File      string
	ReadCount int
}

// Batch carries an ordered run of converted reads from one file. Ownership
// of the reads passes to the supervisor on send.
type Batch struct {
	File  string
	Reads []*pod5.CompressedRead
}

// EndFile marks a file done, successfully or not. ReadsEmitted counts what
// actually made it out, which may fall short of the declared count.
type EndFile struct {
	File         string
	ReadsEmitted int
}

func (StartFile) message() {}
func (Batch) message()     {}
func (EndFile) message()   {}
