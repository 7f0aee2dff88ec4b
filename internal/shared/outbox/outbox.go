package outbox

// Outbox row persisted inside the same DB transaction as ledger changes.
// Worker relay reads pending rows and publishes to the message bus; this is
// how fire-and-forget notifications reach collaborating policy contracts.
type Message struct {
	ID         string
	EventType  string
	Payload    []byte
	Status     string // pending, published, failed
	RetryCount int
}
