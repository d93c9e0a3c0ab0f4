package render

import (
	"context"
	"testing"

	"github.com/aretw0/quill/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSubmit(t *testing.T, q *queue, name string) *Request {
	t.Helper()
	req, _ := q.submit(func() *Request {
		r, _ := newRequest(context.Background(), domain.StaticTemplate(name, ""), nil)
		return r
	})
	require.NotNil(t, req)
	return req
}

func TestQueue_FIFO(t *testing.T) {
	q := newQueue()
	for _, name := range []string{"a", "b", "c"} {
		mustSubmit(t, q, name)
	}
	assert.Equal(t, 3, q.len())

	var got []string
	for {
		req, ok := q.tryPop()
		if !ok {
			break
		}
		got = append(got, req.Template.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, q.len())
}

func TestQueue_SubmitAfterClose(t *testing.T) {
	q := newQueue()
	mustSubmit(t, q, "queued")

	assert.True(t, q.close())
	assert.False(t, q.close(), "second close is a no-op")

	built := false
	req, _ := q.submit(func() *Request {
		built = true
		return nil
	})
	assert.Nil(t, req)
	assert.False(t, built, "closed queue must not build a request")

	// Already queued work survives the close.
	assert.False(t, q.drained())
	popped, ok := q.tryPop()
	require.True(t, ok)
	assert.Equal(t, "queued", popped.Template.Name)
	assert.True(t, q.drained())
}

func TestQueue_WaitSignals(t *testing.T) {
	q := newQueue()
	mustSubmit(t, q, "a")
	mustSubmit(t, q, "b")

	select {
	case <-q.wait():
	default:
		t.Fatal("expected a pending signal after submit")
	}

	q.close()
	select {
	case _, open := <-q.wait():
		assert.False(t, open, "signal channel is closed on close")
	default:
		t.Fatal("expected closed signal channel")
	}
}

func TestRequest_CompleteOnce(t *testing.T) {
	req, handle := newRequest(context.Background(), domain.StaticTemplate("x", ""), nil)
	assert.NotEmpty(t, req.ID)

	req.complete("first", nil)
	req.complete("second", nil)

	res := <-handle
	assert.Equal(t, "first", res.html)
	select {
	case <-handle:
		t.Fatal("handle must be written exactly once")
	default:
	}
}
