// Package memory provides in-memory repository implementations used by unit
// tests. Data lives in plain maps and slices guarded by one mutex; unique
// indexes from the relational schema are emulated on insert.
package memory

import (
	"context"
	"sync"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
)

type Store struct {
	mu sync.Mutex
	// txMu serializes WithTx blocks; individual operations still lock mu.
	txMu sync.Mutex

	nextID uint

	sessions     map[string]*models.UserSession
	questions    map[uint]*models.Question
	qrcodes      map[uint]*models.QRCode
	codeWords    map[uint]*models.CodeWord
	scans        []*models.UserScan
	served       []*models.ServedQuestion
	answers      []*models.UserAnswer
	participants map[uint]*models.Participant
	gameState    *models.GameState
	submissions  map[uint]*models.TaskSubmission
	boxes        map[int]*models.Box
	admins       map[string]*models.AdminUser
}

func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]*models.UserSession),
		questions:    make(map[uint]*models.Question),
		qrcodes:      make(map[uint]*models.QRCode),
		codeWords:    make(map[uint]*models.CodeWord),
		participants: make(map[uint]*models.Participant),
		submissions:  make(map[uint]*models.TaskSubmission),
		boxes:        make(map[int]*models.Box),
		admins:       make(map[string]*models.AdminUser),
	}
}

// id allocates the next primary key. Callers must hold mu.
func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Sessions() repositories.SessionRepository         { return &sessionRepo{s} }
func (s *Store) Questions() repositories.QuestionRepository       { return &questionRepo{s} }
func (s *Store) QRCodes() repositories.QRCodeRepository           { return &qrCodeRepo{s} }
func (s *Store) CodeWords() repositories.CodeWordRepository       { return &codeWordRepo{s} }
func (s *Store) Scans() repositories.ScanRepository               { return &scanRepo{s} }
func (s *Store) Served() repositories.ServedQuestionRepository    { return &servedRepo{s} }
func (s *Store) Answers() repositories.AnswerRepository           { return &answerRepo{s} }
func (s *Store) Participants() repositories.ParticipantRepository { return &participantRepo{s} }
func (s *Store) GameState() repositories.GameStateRepository      { return &gameStateRepo{s} }
func (s *Store) Submissions() repositories.SubmissionRepository   { return &submissionRepo{s} }
func (s *Store) Boxes() repositories.BoxRepository                { return &boxRepo{s} }
func (s *Store) Admins() repositories.AdminRepository             { return &adminRepo{s} }
func (s *Store) Scores() repositories.ScoreRepository             { return &scoreRepo{s} }

// WithTx serializes against other transactions. Rollback is not emulated;
// tests drive the happy paths and assert conflicts before mutation.
func (s *Store) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

var _ repositories.Repository = (*Store)(nil)
