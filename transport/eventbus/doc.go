// Package eventbus publishes room lifecycle events to NATS.
//
// Events are fire-and-forget JSON documents on subjects of the form
// <prefix>.rooms.<kind>, for example duelrooms.rooms.created. Gameplay never
// waits on the feed; a failed publish is logged by the caller and dropped.
// Nop is used when no NATS server is configured.
//
// Usage:
//
//	pub, err := eventbus.NewNATSPublisher("nats://localhost:4222", "duelrooms")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pub.Close()
//
//	_ = pub.Publish(ctx, eventbus.Event{Kind: eventbus.KindCreated, Room: "3f9a1c2e"})
//
// Subscribing:
//
//	nats sub 'duelrooms.rooms.>'
package eventbus
