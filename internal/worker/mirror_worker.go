// Package worker mirrors recorded entries into a spreadsheet row by row,
// driven by the entry event queue.
package worker

import (
	"context"
	"fmt"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/log"
)

// RowAppender appends one entry as a spreadsheet row. The sheets client
// implements it.
type RowAppender interface {
	AppendRow(ctx context.Context, e core.Entry) (string, error)
}

type MirrorWorker struct {
	appender RowAppender
	logger   *log.Logger
}

func NewMirrorWorker(appender RowAppender, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		appender: appender,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEntryRecorded appends the entry described by the message. Returning
// an error requeues the event, so appends are at-least-once; duplicate rows
// carry the same entry ID and can be reconciled in the sheet.
func (w *MirrorWorker) HandleEntryRecorded(ctx context.Context, msg *amqp.EntryRecordedMessage) error {
	e := msg.Entry()
	if err := e.Validate(); err != nil {
		// Invalid events can never succeed; drop instead of requeue.
		w.logger.ErrorContext(ctx, "dropping invalid entry event",
			log.FieldEntryID, msg.ID, log.FieldError, err)
		return nil
	}

	rng, err := w.appender.AppendRow(ctx, e)
	if err != nil {
		return fmt.Errorf("append entry %s: %w", e.ID, err)
	}
	w.logger.InfoContext(ctx, "entry mirrored",
		log.FieldEntryID, e.ID, "range", rng)
	return nil
}
