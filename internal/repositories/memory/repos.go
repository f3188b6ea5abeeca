package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
)

// ===== SESSIONS =====

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Upsert(ctx context.Context, username, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.sessions[sessionID]; ok {
		existing.Username = username
		return nil
	}
	r.s.sessions[sessionID] = &models.UserSession{
		ID:        r.s.id(),
		Username:  username,
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *sessionRepo) GetByUsernames(ctx context.Context, usernames []string) ([]*models.UserSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		want[u] = true
	}
	var out []*models.UserSession
	for _, session := range r.s.sessions {
		if want[session.Username] {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *sessionRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sessionIDs {
		delete(r.s.sessions, id)
	}
	return nil
}

// ===== QUESTIONS =====

type questionRepo struct{ s *Store }

func (r *questionRepo) Create(ctx context.Context, question *models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	question.ID = r.s.id()
	copied := *question
	r.s.questions[question.ID] = &copied
	return nil
}

func (r *questionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	question, ok := r.s.questions[id]
	if !ok {
		return nil, nil
	}
	copied := *question
	return &copied, nil
}

func (r *questionRepo) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Question
	for _, q := range r.s.questions {
		if filters.IsTask != nil && q.IsTask != *filters.IsTask {
			continue
		}
		if filters.QuestID != nil && q.QuestID != *filters.QuestID {
			continue
		}
		copied := *q
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *questionRepo) ExistsByText(ctx context.Context, text string, isTask bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.questions {
		if q.Text == text && q.IsTask == isTask {
			return true, nil
		}
	}
	return false, nil
}

func (r *questionRepo) FindCandidates(ctx context.Context, filters repositories.CandidateFilters) ([]*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	excluded := make(map[uint]bool)
	for _, a := range r.s.answers {
		if a.SessionID == filters.SessionID {
			excluded[a.QuestionID] = true
		}
	}
	for _, sv := range r.s.served {
		if sv.SessionID == filters.SessionID {
			excluded[sv.QuestionID] = true
		}
	}

	var out []*models.Question
	for _, q := range r.s.questions {
		if excluded[q.ID] {
			continue
		}
		if !q.IsTask && q.Used {
			continue
		}
		if filters.QuestID != nil && q.QuestID != *filters.QuestID {
			continue
		}
		copied := *q
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *questionRepo) MarkUsed(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if q, ok := r.s.questions[id]; ok {
		q.Used = true
	}
	return nil
}

func (r *questionRepo) ResetUsed(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.questions {
		q.Used = false
	}
	return nil
}

func (r *questionRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.questions, id)
	return nil
}

func (r *questionRepo) DeleteByIDs(ctx context.Context, ids []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.questions, id)
	}
	return nil
}

// ===== QR CODES =====

type qrCodeRepo struct{ s *Store }

func (r *qrCodeRepo) Create(ctx context.Context, code *models.QRCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.qrcodes {
		if existing.Code == code.Code {
			return fmt.Errorf("duplicate qr code %d", code.Code)
		}
	}
	code.ID = r.s.id()
	copied := *code
	r.s.qrcodes[code.ID] = &copied
	return nil
}

func (r *qrCodeRepo) GetByCode(ctx context.Context, code int) (*models.QRCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, qr := range r.s.qrcodes {
		if qr.Code == code {
			copied := *qr
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *qrCodeRepo) List(ctx context.Context) ([]*models.QRCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.QRCode
	for _, qr := range r.s.qrcodes {
		copied := *qr
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *qrCodeRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.qrcodes, id)
	return nil
}

// ===== CODE WORDS =====

type codeWordRepo struct{ s *Store }

func (r *codeWordRepo) Create(ctx context.Context, word *models.CodeWord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.codeWords {
		if strings.EqualFold(existing.Word, word.Word) {
			return fmt.Errorf("duplicate code word %q", word.Word)
		}
	}
	word.ID = r.s.id()
	word.CreatedAt = time.Now()
	copied := *word
	r.s.codeWords[word.ID] = &copied
	return nil
}

func (r *codeWordRepo) GetByID(ctx context.Context, id uint) (*models.CodeWord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cw, ok := r.s.codeWords[id]; ok {
		copied := *cw
		return &copied, nil
	}
	return nil, nil
}

func (r *codeWordRepo) GetByWord(ctx context.Context, word string) (*models.CodeWord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cw := range r.s.codeWords {
		if strings.EqualFold(cw.Word, word) {
			copied := *cw
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *codeWordRepo) List(ctx context.Context) ([]*models.CodeWord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.CodeWord
	for _, cw := range r.s.codeWords {
		copied := *cw
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *codeWordRepo) MarkUsed(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cw, ok := r.s.codeWords[id]; ok {
		cw.Used = true
	}
	return nil
}

func (r *codeWordRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.codeWords, id)
	return nil
}

func (r *codeWordRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.codeWords = make(map[uint]*models.CodeWord)
	return nil
}

// ===== SCANS / SERVED / ANSWERS =====

type scanRepo struct{ s *Store }

func (r *scanRepo) Create(ctx context.Context, scan *models.UserScan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.scans {
		if existing.SessionID == scan.SessionID && existing.Code == scan.Code {
			return fmt.Errorf("duplicate scan (%s, %s)", scan.SessionID, scan.Code)
		}
	}
	scan.ID = r.s.id()
	scan.ScannedAt = time.Now()
	copied := *scan
	r.s.scans = append(r.s.scans, &copied)
	return nil
}

func (r *scanRepo) Exists(ctx context.Context, sessionID, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, scan := range r.s.scans {
		if scan.SessionID == sessionID && scan.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *scanRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := sessionIDSet(sessionIDs)
	kept := r.s.scans[:0]
	for _, scan := range r.s.scans {
		if !want[scan.SessionID] {
			kept = append(kept, scan)
		}
	}
	r.s.scans = kept
	return nil
}

type servedRepo struct{ s *Store }

func (r *servedRepo) Create(ctx context.Context, served *models.ServedQuestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.served {
		if existing.SessionID == served.SessionID && existing.QuestionID == served.QuestionID {
			return fmt.Errorf("duplicate served question (%s, %d)", served.SessionID, served.QuestionID)
		}
	}
	served.ID = r.s.id()
	served.ServedAt = time.Now()
	copied := *served
	r.s.served = append(r.s.served, &copied)
	return nil
}

func (r *servedRepo) DeleteByQuestionIDs(ctx context.Context, questionIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := questionIDSet(questionIDs)
	kept := r.s.served[:0]
	for _, sv := range r.s.served {
		if !want[sv.QuestionID] {
			kept = append(kept, sv)
		}
	}
	r.s.served = kept
	return nil
}

func (r *servedRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := sessionIDSet(sessionIDs)
	kept := r.s.served[:0]
	for _, sv := range r.s.served {
		if !want[sv.SessionID] {
			kept = append(kept, sv)
		}
	}
	r.s.served = kept
	return nil
}

type answerRepo struct{ s *Store }

func (r *answerRepo) Create(ctx context.Context, answer *models.UserAnswer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	answer.ID = r.s.id()
	answer.AnsweredAt = time.Now()
	copied := *answer
	r.s.answers = append(r.s.answers, &copied)
	return nil
}

func (r *answerRepo) DeleteByQuestionIDs(ctx context.Context, questionIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := questionIDSet(questionIDs)
	kept := r.s.answers[:0]
	for _, a := range r.s.answers {
		if !want[a.QuestionID] {
			kept = append(kept, a)
		}
	}
	r.s.answers = kept
	return nil
}

func (r *answerRepo) DeleteBySessionIDs(ctx context.Context, sessionIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := sessionIDSet(sessionIDs)
	kept := r.s.answers[:0]
	for _, a := range r.s.answers {
		if !want[a.SessionID] {
			kept = append(kept, a)
		}
	}
	r.s.answers = kept
	return nil
}

func sessionIDSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func questionIDSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ===== PARTICIPANTS / ADMINS =====

type participantRepo struct{ s *Store }

func (r *participantRepo) Create(ctx context.Context, participant *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.participants {
		if existing.Username == participant.Username {
			return fmt.Errorf("duplicate participant %q", participant.Username)
		}
	}
	participant.ID = r.s.id()
	participant.CreatedAt = time.Now()
	copied := *participant
	r.s.participants[participant.ID] = &copied
	return nil
}

func (r *participantRepo) GetByID(ctx context.Context, id uint) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	participant, ok := r.s.participants[id]
	if !ok {
		return nil, nil
	}
	copied := *participant
	return &copied, nil
}

func (r *participantRepo) GetByUsername(ctx context.Context, username string) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, participant := range r.s.participants {
		if participant.Username == username {
			copied := *participant
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *participantRepo) List(ctx context.Context) ([]*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Participant
	for _, participant := range r.s.participants {
		copied := *participant
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *participantRepo) Update(ctx context.Context, participant *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *participant
	r.s.participants[participant.ID] = &copied
	return nil
}

func (r *participantRepo) UpdateLanguageAll(ctx context.Context, language string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, participant := range r.s.participants {
		participant.Language = language
	}
	return nil
}

func (r *participantRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.participants, id)
	return nil
}

type adminRepo struct{ s *Store }

func (r *adminRepo) Create(ctx context.Context, admin *models.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.admins[admin.Username]; ok {
		return fmt.Errorf("duplicate admin %q", admin.Username)
	}
	admin.ID = r.s.id()
	copied := *admin
	r.s.admins[admin.Username] = &copied
	return nil
}

func (r *adminRepo) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	admin, ok := r.s.admins[username]
	if !ok {
		return nil, nil
	}
	copied := *admin
	return &copied, nil
}

func (r *adminRepo) Update(ctx context.Context, admin *models.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *admin
	r.s.admins[admin.Username] = &copied
	return nil
}

// ===== GAME STATE =====

type gameStateRepo struct{ s *Store }

func (r *gameStateRepo) Get(ctx context.Context) (*models.GameState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.gameState == nil {
		return nil, nil
	}
	copied := *r.s.gameState
	return &copied, nil
}

func (r *gameStateRepo) Save(ctx context.Context, state *models.GameState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if state.ID == 0 {
		state.ID = r.s.id()
	}
	state.UpdatedAt = time.Now()
	copied := *state
	r.s.gameState = &copied
	return nil
}

// ===== SUBMISSIONS / BOXES =====

type submissionRepo struct{ s *Store }

func (r *submissionRepo) Create(ctx context.Context, submission *models.TaskSubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.submissions {
		if existing.SessionID == submission.SessionID && existing.QuestionID == submission.QuestionID {
			return fmt.Errorf("duplicate submission (%s, %d)", submission.SessionID, submission.QuestionID)
		}
	}
	submission.ID = r.s.id()
	submission.CreatedAt = time.Now()
	copied := *submission
	r.s.submissions[submission.ID] = &copied
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	submission, ok := r.s.submissions[id]
	if !ok {
		return nil, nil
	}
	copied := *submission
	return &copied, nil
}

func (r *submissionRepo) Exists(ctx context.Context, sessionID string, questionID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, submission := range r.s.submissions {
		if submission.SessionID == sessionID && submission.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *submissionRepo) ListByQuestion(ctx context.Context, questionID uint) ([]*models.TaskSubmission, error) {
	return r.listWhere(func(sub *models.TaskSubmission) bool {
		return sub.QuestionID == questionID
	})
}

func (r *submissionRepo) ListByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.TaskSubmission, error) {
	want := questionIDSet(questionIDs)
	return r.listWhere(func(sub *models.TaskSubmission) bool {
		return want[sub.QuestionID]
	})
}

func (r *submissionRepo) ListBySessionIDs(ctx context.Context, sessionIDs []string) ([]*models.TaskSubmission, error) {
	want := sessionIDSet(sessionIDs)
	return r.listWhere(func(sub *models.TaskSubmission) bool {
		return want[sub.SessionID]
	})
}

func (r *submissionRepo) listWhere(match func(*models.TaskSubmission) bool) ([]*models.TaskSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.TaskSubmission
	for _, submission := range r.s.submissions {
		if match(submission) {
			copied := *submission
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *submissionRepo) Update(ctx context.Context, submission *models.TaskSubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *submission
	r.s.submissions[submission.ID] = &copied
	return nil
}

func (r *submissionRepo) TaskSummary(ctx context.Context) ([]*repositories.TaskSummaryRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make(map[uint]*repositories.TaskSummaryRow)
	for _, q := range r.s.questions {
		if q.IsTask {
			rows[q.ID] = &repositories.TaskSummaryRow{QuestionID: q.ID}
		}
	}
	for _, submission := range r.s.submissions {
		row, ok := rows[submission.QuestionID]
		if !ok {
			continue
		}
		row.Total++
		if submission.Rating != nil {
			row.Rated++
		}
	}
	var out []*repositories.TaskSummaryRow
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *submissionRepo) DeleteByIDs(ctx context.Context, ids []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.submissions, id)
	}
	return nil
}

type boxRepo struct{ s *Store }

func (r *boxRepo) Create(ctx context.Context, box *models.Box) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boxes[box.BoxIndex]; ok {
		return fmt.Errorf("duplicate box index %d", box.BoxIndex)
	}
	box.ID = r.s.id()
	box.CreatedAt = time.Now()
	copied := *box
	r.s.boxes[box.BoxIndex] = &copied
	return nil
}

func (r *boxRepo) GetByIndex(ctx context.Context, index int) (*models.Box, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	box, ok := r.s.boxes[index]
	if !ok {
		return nil, nil
	}
	copied := *box
	return &copied, nil
}

func (r *boxRepo) List(ctx context.Context) ([]*models.Box, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Box
	for _, box := range r.s.boxes {
		copied := *box
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BoxIndex < out[j].BoxIndex })
	return out, nil
}

func (r *boxRepo) Update(ctx context.Context, box *models.Box) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *box
	r.s.boxes[box.BoxIndex] = &copied
	return nil
}

func (r *boxRepo) DeleteAboveIndex(ctx context.Context, index int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for idx := range r.s.boxes {
		if idx > index {
			delete(r.s.boxes, idx)
		}
	}
	return nil
}

// ===== SCORES =====

type scoreRepo struct{ s *Store }

func (r *scoreRepo) LeaderboardRows(ctx context.Context) ([]*repositories.ScoreRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make(map[string]*repositories.ScoreRow)
	sessionUser := make(map[string]string)
	for _, session := range r.s.sessions {
		sessionUser[session.SessionID] = session.Username
		if _, ok := rows[session.Username]; !ok {
			rows[session.Username] = &repositories.ScoreRow{Username: session.Username}
		}
	}
	for _, answer := range r.s.answers {
		username, ok := sessionUser[answer.SessionID]
		if !ok {
			continue
		}
		row := rows[username]
		row.TotalAnswers++
		if answer.IsCorrect {
			row.AutoCorrect++
		}
	}
	for _, participant := range r.s.participants {
		if row, ok := rows[participant.Username]; ok {
			row.Awarded = participant.CorrectCount
		}
	}

	var out []*repositories.ScoreRow
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *scoreRepo) RaffleRows(ctx context.Context) ([]*repositories.RaffleRow, error) {
	full, err := r.LeaderboardRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*repositories.RaffleRow, 0, len(full))
	for _, row := range full {
		out = append(out, &repositories.RaffleRow{
			Username:    row.Username,
			AutoCorrect: row.AutoCorrect,
		})
	}
	return out, nil
}
