// Package delivery sends a rendered newsletter to its recipient.
package delivery

import "context"

// Message is a rendered newsletter addressed to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}
