package _202511051200_rewardPointsTransactions

import (
	"database/sql"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`create table if not exists reward_points_transactions (
			id bigserial primary key,
			giver_id bigint not null,
			external_post_id varchar not null,
			author_id bigint not null,
			points smallint not null check (points between 1 and 5),
			created_at timestamp with time zone not null default now(),
			unique(giver_id, external_post_id)
		);`,
		`create index if not exists idx_reward_points_transactions_created_at on reward_points_transactions (created_at);`,
		`create index if not exists idx_reward_points_transactions_author_id on reward_points_transactions (author_id);`,
	}
	for _, query := range queries {
		if err := grm.Exec(query).Error; err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202511051200_rewardPointsTransactions"
}
