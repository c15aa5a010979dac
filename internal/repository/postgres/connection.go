package postgres

import (
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.LeagueAccount{},
		&domain.UserChampionStat{},
		&domain.UserRank{},
		&domain.UserMasteryDelta{},
		&domain.Server{},
		&domain.Role{},
		&domain.Condition{},
		&domain.Champion{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:     NewUserRepository(db),
		Account:  NewAccountRepository(db),
		Stat:     NewStatRepository(db),
		Rank:     NewRankRepository(db),
		Delta:    NewDeltaRepository(db),
		Server:   NewServerRepository(db),
		Champion: NewChampionRepository(db),
	}
}
