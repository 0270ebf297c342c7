// Package notify delivers "new file" events to registered push subscriptions.
package notify

import "errors"

// ErrGone marks an endpoint the provider reported as permanently invalid.
// The fan-out prunes such subscriptions; any other failure is logged and left
// for the next notification cycle.
var ErrGone = errors.New("notify: subscription permanently invalid")

// Message is the payload delivered to subscribers when a file is catalogued.
type Message struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	FileID   string `json:"fileId"`
	Program  string `json:"program"`
	Semester string `json:"semester"`
	Subject  string `json:"subject"`
}
