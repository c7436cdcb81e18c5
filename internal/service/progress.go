package service

import "github.com/inkgrade/inkgrade-api/internal/models"

// Progress stage labels surfaced by the status endpoint.
const (
	StageAwaitingOCR = "awaiting OCR"
	StageOCRRunning  = "OCR in progress"
	StageGrading     = "grading in progress"
	StageCompleted   = "completed"
)

// ProjectProgress derives a progress percentage and stage label from whichever
// result rows exist. There is no persisted stage field; the projection is
// recomputed on every read, so a poll racing a pipeline write may observe an
// intermediate combination.
func ProjectProgress(ocr *models.OCRResult, grading *models.GradingResult) (int, string) {
	switch {
	case ocr == nil:
		return 10, StageAwaitingOCR
	case !ocr.HasText():
		return 30, StageOCRRunning
	case grading == nil:
		return 60, StageGrading
	case !grading.HasOutcome():
		return 80, StageGrading
	default:
		return 100, StageCompleted
	}
}
