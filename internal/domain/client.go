package domain

import "time"

// Client owns zero or more accounts.
type Client struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// ClientAccounts is a client loaded together with its accounts.
type ClientAccounts struct {
	Client   *Client
	Accounts []*Account
}
