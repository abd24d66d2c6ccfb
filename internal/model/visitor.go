package model

import "time"

// Visitor is one browser known to famdesk, identified by its visitor cookie.
type Visitor struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// StoredCookie is a backend cookie saved on a visitor's behalf. Value is
// sealed at rest; stores hand it back already opened. Origin is the
// backend URL the cookie was received from.
type StoredCookie struct {
	VisitorID string
	Origin    string
	Name      string
	Value     string
	Domain    string
	Path      string
	Expires   time.Time
	Secure    bool
	HTTPOnly  bool
}
