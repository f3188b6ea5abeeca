package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type ExportService interface {
	// ImportQuestionsFromExcel reads the first sheet of an xlsx workbook with
	// the Question/Option1..4/CorrectIndex/QuestID columns.
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*ImportSummary, error)
	// ExportLeaderboard renders the current standings into an xlsx workbook.
	ExportLeaderboard(ctx context.Context) ([]byte, error)
}

type exportService struct {
	repo    repositories.Repository
	scoring ScoringService
	logger  utils.Logger
}

func NewExportService(repo repositories.Repository, scoring ScoringService, logger utils.Logger) ExportService {
	return &exportService{
		repo:    repo,
		scoring: scoring,
		logger:  logger,
	}
}

func (s *exportService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*ImportSummary, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading upload failed: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook failed: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading rows failed: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "workbook needs a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"question", "correctindex"} {
		if _, ok := headerMap[required]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", required), required)
		}
	}

	summary := &ImportSummary{Errors: []ImportError{}}
	for rowIndex, row := range rows[1:] {
		line := rowIndex + 2

		column := func(name string) string {
			if idx, ok := headerMap[name]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		text := column("question")
		if text == "" {
			summary.Errors = append(summary.Errors, ImportError{Line: line, Reason: "Question is required"})
			continue
		}

		options := make([]string, 0, 4)
		for i := 1; i <= 4; i++ {
			if option := column(fmt.Sprintf("option%d", i)); option != "" {
				options = append(options, option)
			}
		}
		correctIdx, err := strconv.Atoi(column("correctindex"))
		if err != nil || correctIdx < 1 || correctIdx > len(options) {
			summary.Errors = append(summary.Errors, ImportError{Line: line, Reason: "Correct index out of range"})
			continue
		}
		questID := 0
		if raw := column("questid"); raw != "" {
			questID, err = strconv.Atoi(raw)
			if err != nil || questID < 0 {
				summary.Errors = append(summary.Errors, ImportError{Line: line, Reason: "Invalid quest id"})
				continue
			}
		}

		exists, err := s.repo.Questions().ExistsByText(ctx, text, false)
		if err != nil {
			return nil, fmt.Errorf("question lookup failed: %w", err)
		}
		if exists {
			summary.Skipped++
			continue
		}

		question := &models.Question{
			Text:          text,
			CorrectAnswer: options[correctIdx-1],
			Options:       datatypes.JSONSlice[string](options),
			QuestID:       questID,
		}
		if err := s.repo.Questions().Create(ctx, question); err != nil {
			summary.Errors = append(summary.Errors, ImportError{Line: line, Reason: err.Error()})
			continue
		}
		summary.Created++
	}

	s.logger.Info("workbook import completed",
		"created", summary.Created,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors))
	return summary, nil
}

func (s *exportService) ExportLeaderboard(ctx context.Context) ([]byte, error) {
	entries, err := s.scoring.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Leaderboard"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet failed: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Username", "Correct", "Completion %", "Exported At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	exportedAt := time.Now().UTC().Format("2006-01-02 15:04:05")
	for rowIndex, entry := range entries {
		row := []interface{}{
			rowIndex + 1,
			entry.Username,
			entry.CorrectCount,
			entry.CompletionPct,
			exportedAt,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook failed: %w", err)
	}
	return buf.Bytes(), nil
}
