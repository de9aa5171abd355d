package storage

import (
	"errors"

	"github.com/stormarchive/timeline-service/internal/types"
	"github.com/stormarchive/timeline-service/internal/types/admins"
)

var (
	// ErrNotFound is returned when the target row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrProtected is returned when a mutation targets a protected admin account.
	ErrProtected = errors.New("account is protected")
)

type Storage interface {
	CreateEvent(req types.EventRequest) (string, error)
	UpdateEvent(id string, req types.EventRequest) error
	DeleteEvent(id string) error
	GetEvent(id string) (types.Event, error)
	ListEvents() ([]types.Event, error)

	CreateMedia(item types.MediaItem) (string, error)
	ListMedia(eventID string) ([]types.MediaItem, error)
	GetMedia(mediaID string) (types.MediaItem, error)
	UpdateMediaCaption(mediaID, caption string) error
	DeleteMedia(eventID, mediaID string) error
	ListObjectKeys() ([]string, error)

	GetAdminByUsername(username string) (admins.Admin, error)
	GetAdmin(id string) (admins.Admin, error)
	ListAdmins() ([]admins.Admin, error)
	CreateAdmin(username, passwordHash, questionID, answerHash string) (string, error)
	UpdateAdmin(id, passwordHash, questionID, answerHash string) error
	DeleteAdmin(id string) error

	GetSecurityQuestion(id string) (admins.SecurityQuestion, error)
	ListSecurityQuestions() ([]admins.SecurityQuestion, error)

	ListAboutSections() ([]types.AboutSection, error)
	ListTeamMembers() ([]types.TeamMember, error)
}
