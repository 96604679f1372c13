// This file is part of cdreader.
//
// cdreader is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cdreader is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cdreader.  If not, see <https://www.gnu.org/licenses/>.

// Package msgqueue implements the message queues that connect the caller of
// a multithreaded CD interface to its reader goroutine.
package msgqueue

import "fmt"

// Kind identifies the type of a Message.
type Kind int

// List of valid Kind values.
const (
	// the reader goroutine has started and the TOC has been read
	Done Kind = iota

	// information from the reader goroutine. the detail is in the Text
	// field
	Info

	// the reader goroutine could not start. the detail is in the Text field
	FatalError

	// request that the reader goroutine stop
	Terminate

	// request a sector. Args[0] is the LBA
	ReadSectorRequest
)

func (k Kind) String() string {
	switch k {
	case Done:
		return "done"
	case Info:
		return "info"
	case FatalError:
		return "fatal error"
	case Terminate:
		return "terminate"
	case ReadSectorRequest:
		return "read sector request"
	}
	return fmt.Sprintf("unknown kind (%d)", int(k))
}

// Message is passed between goroutines by value.
type Message struct {
	Kind Kind
	Args [4]uint32
	Text string
}

// NewMessage creates a message with numeric arguments.
func NewMessage(kind Kind, args ...uint32) Message {
	m := Message{Kind: kind}
	copy(m.Args[:], args)
	return m
}

// NewTextMessage creates a message with a string payload.
func NewTextMessage(kind Kind, text string) Message {
	return Message{Kind: kind, Text: text}
}

// NewReadSectorRequest creates a ReadSectorRequest message for the LBA.
func NewReadSectorRequest(lba int32) Message {
	return NewMessage(ReadSectorRequest, uint32(lba))
}

// LBA interprets the first argument of the message as an LBA.
func (m Message) LBA() int32 {
	return int32(m.Args[0])
}

func (m Message) String() string {
	switch m.Kind {
	case Info, FatalError:
		return fmt.Sprintf("%s: %s", m.Kind, m.Text)
	case ReadSectorRequest:
		return fmt.Sprintf("%s: %d", m.Kind, m.LBA())
	}
	return m.Kind.String()
}
