package session

import (
	"context"

	"github.com/sirupsen/logrus"

	"voice-sheet/internal/gateway"
)

// Loop owns a Session and runs every operation on it from one goroutine.
// Gateway calls run off the loop and report back as later events.
type Loop struct {
	s       *Session
	events  chan func(*Session)
	stopped chan struct{}
	observe func(*Session)
	log     *logrus.Entry
}

func NewLoop(s *Session) *Loop {
	return &Loop{
		s:       s,
		events:  make(chan func(*Session), 64),
		stopped: make(chan struct{}),
		log:     s.log.WithField("component", "loop"),
	}
}

// Observe registers fn to run on the loop after every event. It must be
// called before Run.
func (l *Loop) Observe(fn func(*Session)) { l.observe = fn }

// Run processes events until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn(l.s)
			if l.observe != nil {
				l.observe(l.s)
			}
		}
	}
}

// Post queues fn without waiting for it. It is dropped once the loop has
// stopped.
func (l *Loop) Post(fn func(*Session)) {
	select {
	case l.events <- fn:
	case <-l.stopped:
	}
}

// Do runs fn on the loop and waits for it to return. It must not be
// called from inside the loop.
func (l *Loop) Do(ctx context.Context, fn func(*Session)) error {
	done := make(chan struct{})
	select {
	case l.events <- func(s *Session) { fn(s); close(done) }:
	case <-l.stopped:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenAsync reads a sheet off the loop and loads it on the loop. Failures
// are reported through the notifier.
func (l *Loop) OpenAsync(ctx context.Context, fileID, sheetName string) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		var (
			data *gateway.SheetData
			err  error
		)
		if l.s.gw == nil {
			err = errNoGateway
		} else {
			data, err = l.s.gw.ReadSheet(ctx, fileID, sheetName)
		}
		l.Post(func(s *Session) {
			if err == nil {
				err = s.Load(fileID, data)
			}
			if err != nil {
				l.log.WithError(err).WithField("file", fileID).Error("open failed")
				s.notify(LevelError, "could not open sheet: "+err.Error())
			}
		})
	}()
}

// SaveAsync snapshots the sheet on the loop, writes it through the gateway
// off the loop and completes the save on the loop. Only preparation errors
// are returned; the outcome is reported through the notifier.
func (l *Loop) SaveAsync(ctx context.Context, fileName string) error {
	if l.s.gw == nil {
		return errNoGateway
	}
	var (
		req SaveRequest
		err error
	)
	if derr := l.Do(ctx, func(s *Session) { req, err = s.PrepareSave(fileName) }); derr != nil {
		return derr
	}
	if err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		res, err := l.s.gw.CreateSheet(ctx, req.FileName, req.Sheets)
		l.Post(func(s *Session) { _ = s.CompleteSave(req, res, err) })
	}()
	return nil
}
