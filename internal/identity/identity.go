// Package identity delivers the current owner id to the subscription
// manager. Authentication itself is an external collaborator; this package
// only models "current owner id or none" as a notification channel.
package identity

// Provider notifies the consumer of owner changes. An empty string means
// nobody is signed in.
type Provider interface {
	Changes() <-chan string
}

// Static announces a single fixed owner and never changes. Used by
// server-side sessions and the export CLI, where the owner is known up
// front.
type Static struct {
	ch chan string
}

func NewStatic(ownerID string) *Static {
	ch := make(chan string, 1)
	ch <- ownerID
	return &Static{ch: ch}
}

func (s *Static) Changes() <-chan string {
	return s.ch
}

// Switcher is a programmatic provider for flows where the owner changes
// over time (login, logout, account switch).
type Switcher struct {
	ch chan string
}

func NewSwitcher() *Switcher {
	return &Switcher{ch: make(chan string)}
}

// Switch announces a new owner. It blocks until the consumer has taken
// the notification, which keeps owner changes strictly ordered.
func (s *Switcher) Switch(ownerID string) {
	s.ch <- ownerID
}

// SignOut is shorthand for switching to no owner.
func (s *Switcher) SignOut() {
	s.Switch("")
}

func (s *Switcher) Changes() <-chan string {
	return s.ch
}
