package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/CityQuest-2025/quest-service/internal/repositories"
)

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Sessions() repositories.SessionRepository {
	return &SessionPostgreSQL{db: r.db}
}

func (r *gormRepository) Questions() repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: r.db}
}

func (r *gormRepository) QRCodes() repositories.QRCodeRepository {
	return &QRCodePostgreSQL{db: r.db}
}

func (r *gormRepository) CodeWords() repositories.CodeWordRepository {
	return &CodeWordPostgreSQL{db: r.db}
}

func (r *gormRepository) Scans() repositories.ScanRepository {
	return &ScanPostgreSQL{db: r.db}
}

func (r *gormRepository) Served() repositories.ServedQuestionRepository {
	return &ServedQuestionPostgreSQL{db: r.db}
}

func (r *gormRepository) Answers() repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: r.db}
}

func (r *gormRepository) Participants() repositories.ParticipantRepository {
	return &ParticipantPostgreSQL{db: r.db}
}

func (r *gormRepository) GameState() repositories.GameStateRepository {
	return &GameStatePostgreSQL{db: r.db}
}

func (r *gormRepository) Submissions() repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: r.db}
}

func (r *gormRepository) Boxes() repositories.BoxRepository {
	return &BoxPostgreSQL{db: r.db}
}

func (r *gormRepository) Admins() repositories.AdminRepository {
	return &AdminPostgreSQL{db: r.db}
}

func (r *gormRepository) Scores() repositories.ScoreRepository {
	return &ScorePostgreSQL{db: r.db}
}

// WithTx scopes every repository to a single database transaction.
func (r *gormRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
