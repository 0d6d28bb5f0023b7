// Package broadcast provides a generic in-process pub/sub fan-out.
//
// MemoryBroadcaster delivers each message to every subscriber without
// blocking. A subscriber whose buffer is full misses the message, so one slow
// consumer cannot stall the rest. Subscribers are removed when their context
// is cancelled or when Close is called on either side.
//
//	b := broadcast.NewMemoryBroadcaster[string](16)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	go func() {
//		for msg := range sub.Receive(ctx) {
//			fmt.Println(msg.Data)
//		}
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"})
package broadcast
