package download

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanObserver_DeliversInOrderAndCloses(t *testing.T) {
	payload := bytes.Repeat([]byte{'q'}, 3*DefaultChunkSize+10)
	getter := &spyGetter{resp: &Response{
		StatusCode:    http.StatusOK,
		ContentLength: int64(len(payload)),
		Body:          &fakeBody{Reader: bytes.NewReader(payload)},
	}}
	dest := filepath.Join(t.TempDir(), "chan.bin")

	events := make(chan Event)
	task := NewTask(getter, Config{Logger: newTestLogger()})
	require.NoError(t, task.Execute(context.Background(), Request{URL: "http://example.com/f", DestinationPath: dest}, NewChanObserver(events)))

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	waitDone(t, task)

	require.Len(t, got, 5)
	for _, ev := range got[:4] {
		assert.Equal(t, EventProgress, ev.Kind)
	}
	assert.Equal(t, []int{33, 66, 99, 100}, []int{got[0].Percent, got[1].Percent, got[2].Percent, got[3].Percent})

	last := got[4]
	assert.Equal(t, EventFinished, last.Kind)
	assert.Equal(t, OutcomeSuccess, last.Result.Outcome)
	assert.Equal(t, 100, last.Percent)
}

func TestObserverFuncs_NilFieldsAreSkipped(t *testing.T) {
	var calls int
	obs := ObserverFuncs{OnFinished: func(Result) { calls++ }}

	assert.NotPanics(t, func() { obs.Progress(50) })
	obs.Finished(Result{})
	assert.Equal(t, 1, calls)
}

func TestOutcome_Text(t *testing.T) {
	text, err := OutcomeStorageError.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "storage_error", string(text))

	var o Outcome
	require.NoError(t, o.UnmarshalText([]byte("transport_error")))
	assert.Equal(t, OutcomeTransportError, o)

	assert.Error(t, o.UnmarshalText([]byte("exploded")))
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
