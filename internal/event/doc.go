// Package event provides a small topic-based publish/subscribe bus.
//
// Components publish typed events:
//
//	bus.Publish(ctx, event.NewEvent(TopicRenderStatus, status, "render"))
//
// and subscribers register for exact topics or wildcard patterns:
//
//	bus.Subscribe("render.*", func(ctx context.Context, env event.Envelope) error {
//		...
//	})
//
// "*" matches one topic segment and "**" matches any number. Handlers run
// synchronously on the publishing goroutine for Publish, and on a new
// goroutine for PublishAsync. A panicking handler is recovered and
// reported; it does not affect other handlers.
package event
