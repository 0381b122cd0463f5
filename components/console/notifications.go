package console

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// ToastKind classifies a notification.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
)

// Auto-dismiss delays of the two console variants.
const (
	AppToastDismiss    = 2200 * time.Millisecond
	CustomToastDismiss = 4000 * time.Millisecond
)

// Toast is a transient notification. Message is plain text.
type Toast struct {
	ID        string    `json:"id"`
	Kind      ToastKind `json:"kind"`
	Message   string    `json:"message"`
	DismissMS int64     `json:"dismiss_ms"`
	// DelayMS postpones display, used for follow-up toasts.
	DelayMS int64 `json:"delay_ms,omitempty"`
}

// ToastPublisher forwards toasts to connected clients.
type ToastPublisher interface {
	PublishToast(ctx context.Context, viewer string, toast Toast) error
}

// Notifier builds toasts with stable ids and a fixed dismiss delay.
type Notifier struct {
	dismiss time.Duration
	strict  *bluemonday.Policy
}

// NewNotifier builds a notifier. A non-positive delay uses AppToastDismiss.
func NewNotifier(dismiss time.Duration) *Notifier {
	if dismiss <= 0 {
		dismiss = AppToastDismiss
	}
	return &Notifier{dismiss: dismiss, strict: bluemonday.StrictPolicy()}
}

// Dismiss returns the auto-dismiss delay.
func (n *Notifier) Dismiss() time.Duration { return n.dismiss }

func (n *Notifier) New(kind ToastKind, message string) Toast {
	return Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		DismissMS: n.dismiss.Milliseconds(),
	}
}

func (n *Notifier) Info(message string) Toast    { return n.New(ToastInfo, message) }
func (n *Notifier) Success(message string) Toast { return n.New(ToastSuccess, message) }
func (n *Notifier) Error(message string) Toast   { return n.New(ToastError, message) }

// Remote builds an error toast from a backend failure, preferring the backend's
// own message over fallback.
func (n *Notifier) Remote(message, fallback string) Toast {
	if text := n.PlainText(message); text != "" {
		return n.Error(text)
	}
	return n.Error(fallback)
}

// PlainText strips markup from untrusted text.
func (n *Notifier) PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(n.strict.Sanitize(s)))
}
