package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"timed-quiz-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID       string          `bun:"id,pk"`
	Position int             `bun:"position,notnull"`
	Data     domain.Question `bun:"data,type:jsonb,notnull"`
}

// Seeder writes a question set into the questions table.
type Seeder struct {
	db *bun.DB
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db}
}

// Seed upserts questions by id; position follows slice order.
// Questions are validated as a bank first so nothing invalid reaches the table.
func (s *Seeder) Seed(ctx context.Context, questions []domain.Question) (int, error) {
	bank, err := domain.NewBank(questions)
	if err != nil {
		return 0, fmt.Errorf("validate questions: %w", err)
	}
	stored := bank.Questions()
	rows := make([]questionRow, 0, len(stored))
	for i, q := range stored {
		rows = append(rows, questionRow{ID: q.ID, Position: i, Data: q})
	}

	_, err = s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("upsert questions: %w", err)
	}
	return len(rows), nil
}
