package entity

import "time"

// ID is the stable identity key for every fetchable entity.
type ID = int64

// Kind tags a class of fetchable entity.
type Kind string

const (
	KindLink Kind = "link"
	KindUser Kind = "user"
	KindVote Kind = "vote"
)

// Entity is anything the store can look up by identity.
type Entity interface {
	EntityID() ID
	EntityKind() Kind
}

// Link is a submitted URL with a short description.
type Link struct {
	ID          ID
	URL         string
	Description string
	PostedByID  ID
	CreatedAt   time.Time
}

func (l *Link) EntityID() ID     { return l.ID }
func (l *Link) EntityKind() Kind { return KindLink }

// User is a registered account that posts links and casts votes.
type User struct {
	ID        ID
	Name      string
	Email     string
	CreatedAt time.Time
}

func (u *User) EntityID() ID     { return u.ID }
func (u *User) EntityKind() Kind { return KindUser }

// Vote records one user voting for one link.
type Vote struct {
	ID        ID
	UserID    ID
	LinkID    ID
	CreatedAt time.Time
}

func (v *Vote) EntityID() ID     { return v.ID }
func (v *Vote) EntityKind() Kind { return KindVote }
