package eventmap

import (
	"net/url"
	"strings"
)

// Identity is the visitor bundle carried in from the page-load query string.
// Only the email is ever used to join records.
type Identity struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	UserName  string `json:"userName,omitempty"`
	UserPhone string `json:"userPhone,omitempty"`
}

func IdentityFromQuery(q url.Values) Identity {
	return Identity{
		UserID:    strings.TrimSpace(q.Get("user_id")),
		UserEmail: strings.TrimSpace(q.Get("email")),
		UserName:  strings.TrimSpace(q.Get("name")),
		UserPhone: strings.TrimSpace(q.Get("phoneNumber")),
	}
}

// Query is the inverse of IdentityFromQuery.
func (id Identity) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("user_id", id.UserID)
	set("email", id.UserEmail)
	set("name", id.UserName)
	set("phoneNumber", id.UserPhone)
	return q
}

// Key is the durable join key: the normalized email, or "" when absent.
func (id Identity) Key() string {
	return strings.ToLower(strings.TrimSpace(id.UserEmail))
}

func (id Identity) Empty() bool {
	return id.Key() == "" && strings.TrimSpace(id.UserID) == ""
}

// Merge fills blank fields of id from other. Used to keep the metadata on a
// stored record current without ever clearing it.
func (id Identity) Merge(other Identity) Identity {
	if other.UserID != "" {
		id.UserID = other.UserID
	}
	if other.UserEmail != "" {
		id.UserEmail = other.UserEmail
	}
	if other.UserName != "" {
		id.UserName = other.UserName
	}
	if other.UserPhone != "" {
		id.UserPhone = other.UserPhone
	}
	return id
}
