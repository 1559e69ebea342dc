package notify

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventCodeRedeemed    EventType = "code_redeemed"
	EventPurchaseSettled EventType = "purchase_settled"
)

// Event is a settlement outcome queued for delivery to the affected user.
type Event struct {
	Type    EventType `json:"type"`
	UserID  int64     `json:"user_id"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

func CodeRedeemed(userID int64, to, name string, points int64, balance string) Event {
	return Event{
		Type:    EventCodeRedeemed,
		UserID:  userID,
		To:      to,
		Name:    name,
		Subject: fmt.Sprintf("%d points added to your wallet", points),
		Body: fmt.Sprintf(`Hi %s,

Your code was redeemed and %d points were added to your %s balance.

- EduLedger`, name, points, balance),
	}
}

func PurchaseSettled(userID int64, to, name, item string, points int64) Event {
	return Event{
		Type:    EventPurchaseSettled,
		UserID:  userID,
		To:      to,
		Name:    name,
		Subject: "Purchase confirmed - " + item,
		Body: fmt.Sprintf(`Hi %s,

Your purchase of %s is confirmed.
Points spent: %d

- EduLedger`, name, item, points),
	}
}
