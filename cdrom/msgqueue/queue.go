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

package msgqueue

import (
	"sync"

	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
)

// Fatal is the error pattern used by Received.Err() for FatalError messages.
const Fatal = "msgqueue: fatal error: %s"

// Status of a Pop() operation.
type Status int

// List of valid Status values.
const (
	// no message was available. only returned by non-blocking pops
	StatusEmpty Status = iota

	// Message is valid
	StatusOK

	// the message was a FatalError
	StatusFatal
)

// Received is the result of a call to Queue.Pop().
type Received struct {
	Status  Status
	Message Message
}

// Err returns an error for a Received with StatusFatal. Returns nil in all
// other cases.
func (r Received) Err() error {
	if r.Status != StatusFatal {
		return nil
	}
	return curated.Errorf(Fatal, r.Message.Text)
}

// Queue is a FIFO of messages. Push() never blocks and Pop() can optionally
// block until a message is available. It is safe for any number of producers
// and consumers.
type Queue struct {
	perm logger.Permission
	name string

	crit  sync.Mutex
	cond  *sync.Cond
	queue []Message

	// maximum number of messages that can be queued. zero is no limit
	limit int

	dropped int
}

// New is the preferred method of initialisation for the Queue type. The name
// is used in log entries.
func New(perm logger.Permission, name string, limit int) *Queue {
	q := &Queue{
		perm:  perm,
		name:  name,
		limit: max(0, limit),
	}
	q.cond = sync.NewCond(&q.crit)
	return q
}

// Push adds a message to the end of the queue and wakes a waiting consumer.
// Returns false if the queue is full, in which case the message is dropped.
func (q *Queue) Push(msg Message) bool {
	q.crit.Lock()

	if q.limit > 0 && len(q.queue) >= q.limit {
		q.dropped++
		q.crit.Unlock()
		logger.Logf(q.perm, "msgqueue", "%s: queue full: dropped %s", q.name, msg)
		return false
	}

	q.queue = append(q.queue, msg)
	q.cond.Signal()
	q.crit.Unlock()

	return true
}

// Pop removes the message at the front of the queue. If blocking is true
// then Pop will wait for a message. Otherwise StatusEmpty is returned if the
// queue is empty.
func (q *Queue) Pop(blocking bool) Received {
	q.crit.Lock()
	defer q.crit.Unlock()

	for len(q.queue) == 0 {
		if !blocking {
			return Received{Status: StatusEmpty}
		}
		q.cond.Wait()
	}

	msg := q.queue[0]
	q.queue[0] = Message{}
	q.queue = q.queue[1:]

	if msg.Kind == FatalError {
		return Received{Status: StatusFatal, Message: msg}
	}

	return Received{Status: StatusOK, Message: msg}
}

// Len returns the number of messages in the queue.
func (q *Queue) Len() int {
	q.crit.Lock()
	defer q.crit.Unlock()
	return len(q.queue)
}

// Dropped returns the number of messages dropped because the queue was full.
func (q *Queue) Dropped() int {
	q.crit.Lock()
	defer q.crit.Unlock()
	return q.dropped
}
