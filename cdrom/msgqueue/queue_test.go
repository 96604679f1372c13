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

package msgqueue_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jetsetilly/cdreader/cdrom/msgqueue"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
	"github.com/jetsetilly/cdreader/test"
)

func TestMessage(t *testing.T) {
	m := msgqueue.NewReadSectorRequest(-150)
	test.ExpectEquality(t, m.Kind, msgqueue.ReadSectorRequest)
	test.ExpectEquality(t, m.LBA(), -150)
	test.ExpectEquality(t, m.String(), "read sector request: -150")

	m = msgqueue.NewMessage(msgqueue.Done, 1, 2, 3, 4, 5)
	test.ExpectEquality(t, m.Args, [4]uint32{1, 2, 3, 4})

	m = msgqueue.NewTextMessage(msgqueue.Info, "hello")
	test.ExpectEquality(t, m.String(), "info: hello")
}

func TestNonBlocking(t *testing.T) {
	q := msgqueue.New(logger.Allow, "test", 0)

	r := q.Pop(false)
	test.ExpectEquality(t, r.Status, msgqueue.StatusEmpty)
	test.ExpectSuccess(t, r.Err())

	test.ExpectSuccess(t, q.Push(msgqueue.NewReadSectorRequest(1)))
	test.ExpectSuccess(t, q.Push(msgqueue.NewReadSectorRequest(2)))
	test.ExpectSuccess(t, q.Push(msgqueue.NewMessage(msgqueue.Terminate)))
	test.ExpectEquality(t, q.Len(), 3)

	// messages are popped in the order they were pushed
	r = q.Pop(false)
	test.ExpectEquality(t, r.Status, msgqueue.StatusOK)
	test.ExpectEquality(t, r.Message.LBA(), 1)
	r = q.Pop(false)
	test.ExpectEquality(t, r.Message.LBA(), 2)
	r = q.Pop(true)
	test.ExpectEquality(t, r.Message.Kind, msgqueue.Terminate)

	test.ExpectEquality(t, q.Pop(false).Status, msgqueue.StatusEmpty)
	test.ExpectEquality(t, q.Len(), 0)
}

func TestFatal(t *testing.T) {
	q := msgqueue.New(logger.Allow, "test", 0)
	q.Push(msgqueue.NewTextMessage(msgqueue.FatalError, "bad toc"))

	r := q.Pop(true)
	test.ExpectEquality(t, r.Status, msgqueue.StatusFatal)
	test.ExpectEquality(t, curated.Is(r.Err(), msgqueue.Fatal), true)
	test.ExpectEquality(t, r.Err().Error(), "msgqueue: fatal error: bad toc")
}

func TestLimit(t *testing.T) {
	q := msgqueue.New(logger.Allow, "test", 2)
	test.ExpectSuccess(t, q.Push(msgqueue.NewReadSectorRequest(1)))
	test.ExpectSuccess(t, q.Push(msgqueue.NewReadSectorRequest(2)))
	test.ExpectFailure(t, q.Push(msgqueue.NewReadSectorRequest(3)))
	test.ExpectEquality(t, q.Dropped(), 1)
	test.ExpectEquality(t, q.Len(), 2)

	// room is made by popping
	q.Pop(false)
	test.ExpectSuccess(t, q.Push(msgqueue.NewReadSectorRequest(4)))
	test.ExpectEquality(t, q.Pop(false).Message.LBA(), 2)
	test.ExpectEquality(t, q.Pop(false).Message.LBA(), 4)
}

func TestBlocking(t *testing.T) {
	q := msgqueue.New(logger.Allow, "test", 0)

	done := make(chan msgqueue.Received)
	go func() {
		done <- q.Pop(true)
	}()

	// the consumer should still be waiting
	select {
	case <-done:
		t.Fatalf("blocking pop returned with an empty queue")
	case <-time.After(20 * time.Millisecond):
	}

	q.Push(msgqueue.NewReadSectorRequest(99))

	select {
	case r := <-done:
		test.ExpectEquality(t, r.Status, msgqueue.StatusOK)
		test.ExpectEquality(t, r.Message.LBA(), 99)
	case <-time.After(5 * time.Second):
		t.Fatalf("blocking pop did not wake")
	}
}

func TestConcurrentProducers(t *testing.T) {
	const producers = 4
	const each = 500

	q := msgqueue.New(logger.Allow, "test", 0)

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				q.Push(msgqueue.NewMessage(msgqueue.ReadSectorRequest, uint32(i), uint32(p)))
			}
		}()
	}

	// order is preserved for each producer
	var next [producers]uint32
	for range producers * each {
		r := q.Pop(true)
		p := r.Message.Args[1]
		if !test.ExpectEquality(t, r.Message.Args[0], next[p]) {
			break
		}
		next[p]++
	}

	wg.Wait()
	test.ExpectEquality(t, q.Len(), 0)
}

func TestPingPong(t *testing.T) {
	const rounds = 2000

	toReader := msgqueue.New(logger.Allow, "to reader", 0)
	toCaller := msgqueue.New(logger.Allow, "to caller", 0)

	go func() {
		for {
			r := toReader.Pop(true)
			if r.Message.Kind == msgqueue.Terminate {
				return
			}
			toCaller.Push(r.Message)
		}
	}()

	// every push is followed immediately by a blocking pop on the other
	// queue. a lost wakeup would deadlock the test
	for i := range rounds {
		toReader.Push(msgqueue.NewReadSectorRequest(int32(i)))
		r := toCaller.Pop(true)
		if !test.ExpectEquality(t, r.Message.LBA(), int32(i)) {
			break
		}
	}

	toReader.Push(msgqueue.NewMessage(msgqueue.Terminate))
}
