package models

import "time"

// CommunitySessionType distinguishes how a session's media was captured
type CommunitySessionType string

const (
	SessionTypeVideo CommunitySessionType = "video"
	SessionTypeAudio CommunitySessionType = "audio"
	SessionTypeImage CommunitySessionType = "image"
	SessionTypeText  CommunitySessionType = "text"
)

// Valid reports whether t is a known session type
func (t CommunitySessionType) Valid() bool {
	switch t {
	case SessionTypeVideo, SessionTypeAudio, SessionTypeImage, SessionTypeText:
		return true
	}
	return false
}

// CommunitySession is a recorded community engagement with its media and comments
type CommunitySession struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	Type         CommunitySessionType `json:"type"`
	FileURL      string               `json:"fileUrl,omitempty"`
	IsActive     bool                 `json:"isActive"`
	AllowedRoles []string             `json:"allowedRoles,omitempty"`
	CreatedBy    *User                `json:"createdBy,omitempty"`
	Comments     []Comment            `json:"comments,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// Comment left on a community session
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId,omitempty"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
