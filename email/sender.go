package email

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/walletsign/go-walletsign-server/types"
)

var (
	sendersMu sync.RWMutex
	senders   = make(map[string]Sender)
)

// Sender delivers a transactional message through an external email service
// provider. Delivery is fire-and-forget from the caller's point of view: a
// failure is surfaced, never retried here.
type Sender interface {
	Send(ctx context.Context, msg *types.Mail) error
}

// RegisterSender makes a sender available by the provided name.
// If RegisterSender is called twice with the same name or if the sender is
// nil, it panics.
func RegisterSender(name string, s Sender) {
	sendersMu.Lock()
	defer sendersMu.Unlock()
	if s == nil {
		panic("email: Register sender is nil")
	}
	if _, dup := senders[name]; dup {
		panic("email: Register called twice for sender " + name)
	}
	senders[name] = s
}

// GetSender returns the registered sender or nil
func GetSender(name string) Sender {
	sendersMu.RLock()
	defer sendersMu.RUnlock()
	return senders[name]
}

// Senders returns a sorted list of the names of the registered senders
func Senders() []string {
	sendersMu.RLock()
	defer sendersMu.RUnlock()
	list := make([]string, 0, len(senders))
	for name := range senders {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// for tests only
func unregisterAllSenders() {
	sendersMu.Lock()
	defer sendersMu.Unlock()
	senders = make(map[string]Sender)
}

// HtmlToText strips markup from an HTML body to produce the text/plain
// alternative part
func HtmlToText(html string) string {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	clean := p.Sanitize(html)
	clean = strings.ReplaceAll(clean, "\n", " ")
	clean = strings.ReplaceAll(clean, "\t", " ")
	words := strings.Fields(clean)
	return strings.Join(words, " ")
}
