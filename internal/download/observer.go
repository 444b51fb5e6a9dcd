package download

// Observer receives notifications for one download. Calls are made
// sequentially from the Task's goroutine: zero or more Progress calls
// followed by exactly one Finished.
type Observer interface {
	Progress(percent int)
	Finished(res Result)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnProgress func(percent int)
	OnFinished func(res Result)
}

func (o ObserverFuncs) Progress(percent int) {
	if o.OnProgress != nil {
		o.OnProgress(percent)
	}
}

func (o ObserverFuncs) Finished(res Result) {
	if o.OnFinished != nil {
		o.OnFinished(res)
	}
}

// EventKind distinguishes progress from completion events.
type EventKind int

const (
	EventProgress EventKind = iota
	EventFinished
)

// Event is a notification as seen by a ChanObserver consumer.
type Event struct {
	Kind    EventKind
	Percent int
	// Result is only set when Kind is EventFinished.
	Result Result
}

// ChanObserver forwards notifications onto a channel so they can be
// consumed on whatever goroutine owns the channel. Sends block until the
// consumer receives, which preserves ordering. The channel is closed
// after the finished event, so a ChanObserver serves a single download.
type ChanObserver struct {
	ch chan<- Event
}

func NewChanObserver(ch chan<- Event) *ChanObserver { return &ChanObserver{ch: ch} }

func (o *ChanObserver) Progress(percent int) {
	o.ch <- Event{Kind: EventProgress, Percent: percent}
}

func (o *ChanObserver) Finished(res Result) {
	o.ch <- Event{Kind: EventFinished, Percent: finalPercent(res), Result: res}
	close(o.ch)
}

func finalPercent(res Result) int {
	if res.ContentLength <= 0 {
		return 0
	}
	return percentOf(res.BytesWritten, res.ContentLength)
}
