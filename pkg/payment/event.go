package payment

// Event type discriminators the provider delivers. Only checkout completion
// carries business meaning here; everything else is acknowledged and
// ignored so the provider stops redelivering it.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
)

// Event is the provider-signed webhook envelope. Delivery is at-least-once;
// consumers must be idempotent on the payload, not on delivery count.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object CheckoutSession `json:"object"`
}

// CheckoutSession is the completed-checkout payload. AmountTotal is in the
// provider's minor currency unit (cents). Metadata is attached by our own
// checkout initiation; missing fields mean checkout was started wrong, not
// a transient condition.
type CheckoutSession struct {
	ID          string          `json:"id"`
	AmountTotal int64           `json:"amount_total"`
	Currency    string          `json:"currency"`
	Metadata    SessionMetadata `json:"metadata"`
}

type SessionMetadata struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
}
