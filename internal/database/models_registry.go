package database

import "silenceboost/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.InterestWeight{},
		&models.Post{},
		&models.PostLike{},
		&models.Reply{},
		&models.War{},
		&models.Entry{},
		&models.EntryVote{},
		&models.Notification{},
	}
}
