package postgres

import (
	"database/sql"

	"github.com/ailubes/veterans-orden-sub001/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.MemberRepository
	repository.StatsRepository
	repository.AdvancementRepository
	repository.AdvancementRequestRepository
	repository.RequirementRepository
	repository.ContributionRepository
	repository.SettingsRepository
	repository.RecheckQueueRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                           db,
		MemberRepository:             NewMemberRepository(db),
		StatsRepository:              NewStatsRepository(db),
		AdvancementRepository:        NewAdvancementRepository(db),
		AdvancementRequestRepository: NewAdvancementRequestRepository(db),
		RequirementRepository:        NewRequirementRepository(db),
		ContributionRepository:       NewContributionRepository(db),
		SettingsRepository:           NewSettingsRepository(db),
		RecheckQueueRepository:       NewRecheckQueueRepository(db),
	}
}
