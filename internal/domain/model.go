package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

// DateLayout is the wire and storage format of page dates.
const DateLayout = "2006-01-02"

// User represents an account able to log in to the back office
type User struct {
	ID           uint64
	Username     string `gorm:"uniqueIndex;size:100"`
	Name         string `gorm:"size:100"`
	Password     string `gorm:"-"` // input only, not stored in db
	PasswordHash string
	Role         string `gorm:"size:20;default:author"`
	TokenVersion uint64 `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SafeUser represents a user without sensitive information
type SafeUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (u *User) ToSafeUser() SafeUser {
	return SafeUser{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}
}

// Actor is the authenticated identity a request acts on behalf of.
type Actor struct {
	ID   uint64
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may edit or delete a page owned by authorID.
func (a Actor) CanManage(authorID uint64) bool {
	return a.IsAdmin() || a.ID == authorID
}

type Page struct {
	ID          uint64
	Title       string `gorm:"size:80;not null"`
	AuthorID    uint64 `gorm:"index;not null"`
	Author      User
	CreatedAt   datatypes.Date  `gorm:"not null"`
	PublishedAt *datatypes.Date `gorm:"index"`
	Blocks      []Block         `gorm:"constraint:OnDelete:CASCADE"`
	// Revision grows on every update and guards concurrent edits.
	Revision  uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

type Block struct {
	ID       uint64
	PageID   uint64 `gorm:"index;not null"`
	Type     string `gorm:"size:20;not null"`
	Value    string `gorm:"size:300;not null"`
	Position int    `gorm:"not null"`
}

type Image struct {
	ID   uint64
	URL  string `gorm:"uniqueIndex;size:255"`
	Name string `gorm:"size:100"`
}

// Site holds the single row with site-wide settings.
type Site struct {
	ID    uint64
	Title string `gorm:"size:50;not null"`
}

// SiteID is the primary key of the only Site row.
const SiteID = 1

type PublicationState string

const (
	StateDraft     PublicationState = "draft"
	StatePublished PublicationState = "published"
	StateScheduled PublicationState = "scheduled"
)

// StateOf derives the publication state of a page relative to today.
func StateOf(publishedAt *time.Time, today time.Time) PublicationState {
	if publishedAt == nil {
		return StateDraft
	}
	if TruncateDay(*publishedAt).After(TruncateDay(today)) {
		return StateScheduled
	}
	return StatePublished
}

// TruncateDay drops the time of day, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a nullable date column as YYYY-MM-DD.
func FormatDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).Format(DateLayout)
	return &s
}

// DateOf converts a nullable time into a date column value.
func DateOf(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(TruncateDay(*t))
	return &d
}

// TimeOf is the inverse of DateOf.
func TimeOf(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}
