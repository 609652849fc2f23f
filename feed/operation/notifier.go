package operation

import "github.com/ethereum/go-ethereum/event"

// Notifier interface defines the methods of the service that provides
// protocol operation updates to consumers.
type Notifier interface {
	OperationFeed() *event.Feed
}
