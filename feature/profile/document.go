package profile

import (
	"fmt"
	"strings"

	"profile-manager/core/utils"
)

// Document field names as stored in the profile JSON.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldSubjectID       = "subjectId"
	FieldFollowing       = "following"
	FieldFollowers       = "followers"
	FieldAvatar          = "avatar"
	FieldBestScore       = "bestScore"
	FieldAverageScore    = "averageScore"
	FieldGamesPlayed     = "gamesPlayed"
	FieldBossesDefeated  = "bossesDefeated"
	FieldThemesCompleted = "themesCompleted"
	FieldLastPlayed      = "lastPlayed"
	FieldThemes          = "themes"
)

// Identity carries the identifying attributes of a profile. The username is
// lowercase-normalized and immutable once set.
type Identity struct {
	Username  string
	Email     string
	SubjectID string
}

// Normalize lowercases the username and email.
func (i Identity) Normalize() Identity {
	return Identity{
		Username:  strings.ToLower(i.Username),
		Email:     strings.ToLower(i.Email),
		SubjectID: i.SubjectID,
	}
}

// AvatarURL derives the generated-image avatar for a username.
// The seed is deterministic, so the same username always renders the same face.
func AvatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/6.x/adventurer-neutral/svg?seed=%s", username)
}

// Document is a decoded profile document. Presence of a key is meaningful:
// older profiles may lack fields added after they were created, and the
// reconciliation engine works off exactly that distinction.
type Document map[string]any

// Username returns the document's username, or "".
func (d Document) Username() string {
	s, _ := d[FieldUsername].(string)
	return s
}

// Email returns the document's email, or "".
func (d Document) Email() string {
	s, _ := d[FieldEmail].(string)
	return s
}

// SubjectID returns the document's credential subject id, or "".
func (d Document) SubjectID() string {
	s, _ := d[FieldSubjectID].(string)
	return s
}

// GamesPlayed returns the games-played counter.
func (d Document) GamesPlayed() int {
	return utils.ToInt(d[FieldGamesPlayed])
}

// Following returns the set of followed usernames.
func (d Document) Following() []string {
	return utils.ToStringSlice(d[FieldFollowing])
}

// Themes returns the theme progress map {themeID: {"levels": {levelID: bool}}}.
// A nil return means the document has no themes field at all.
func (d Document) Themes() map[string]any {
	m, _ := d[FieldThemes].(map[string]any)
	return m
}

// ThemeLevels returns the level-unlock map of one theme entry, or nil when the
// theme entry is absent or malformed.
func (d Document) ThemeLevels(themeID string) map[string]any {
	entry, _ := d.Themes()[themeID].(map[string]any)
	if entry == nil {
		return nil
	}
	levels, _ := entry["levels"].(map[string]any)
	return levels
}
