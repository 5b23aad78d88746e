package postgresadapter

import "gorm.io/gorm"

// AutoMigrate creates or updates the voting-core tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&voterTokenModel{},
		&ballotModel{},
		&voteModel{},
		&outboxModel{},
		&eventDedupModel{},
	)
}
