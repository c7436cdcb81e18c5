package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkgrade/inkgrade-api/internal/models"
)

func TestProjectProgress(t *testing.T) {
	score := 77.0

	cases := []struct {
		name         string
		ocr          *models.OCRResult
		grading      *models.GradingResult
		wantProgress int
		wantStage    string
	}{
		{
			name:         "no results yet",
			wantProgress: 10,
			wantStage:    StageAwaitingOCR,
		},
		{
			name:         "ocr row without text",
			ocr:          &models.OCRResult{RecognizedText: ""},
			wantProgress: 30,
			wantStage:    StageOCRRunning,
		},
		{
			name:         "text recognized, no grading",
			ocr:          &models.OCRResult{RecognizedText: "f(x) = x²"},
			wantProgress: 60,
			wantStage:    StageGrading,
		},
		{
			name:         "grading row without outcome",
			ocr:          &models.OCRResult{RecognizedText: "f(x) = x²"},
			grading:      &models.GradingResult{},
			wantProgress: 80,
			wantStage:    StageGrading,
		},
		{
			name:         "scored grading",
			ocr:          &models.OCRResult{RecognizedText: "f(x) = x²"},
			grading:      &models.GradingResult{Score: &score},
			wantProgress: 100,
			wantStage:    StageCompleted,
		},
		{
			name:         "feedback without score still completes",
			ocr:          &models.OCRResult{RecognizedText: "f(x) = x²"},
			grading:      &models.GradingResult{Feedback: "解答基本正确"},
			wantProgress: 100,
			wantStage:    StageCompleted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			progress, stage := ProjectProgress(tc.ocr, tc.grading)
			require.Equal(t, tc.wantProgress, progress)
			require.Equal(t, tc.wantStage, stage)
		})
	}
}
