package domain

import "time"

// Group is a set of members who share expenses. Members are stored as
// usernames; the creator is always a member.
type Group struct {
	ID        string
	Name      string
	Members   []string
	CreatedAt time.Time
	CreatedBy string
}

// HasMember reports whether the username belongs to the group.
func (g *Group) HasMember(username string) bool {
	for _, member := range g.Members {
		if member == username {
			return true
		}
	}
	return false
}
