package dto

import "time"

// DashboardResponse aggregates a user's grading history.
type DashboardResponse struct {
	TotalSubmissions int64                  `json:"total_submissions"`
	Completed        int64                  `json:"completed"`
	Processing       int64                  `json:"processing"`
	Failed           int64                  `json:"failed"`
	AverageScore     *float64               `json:"average_score"`
	WeakPoints       []KnowledgePointErrors `json:"weak_points"`
	ErrorTypes       []ErrorTypeCount       `json:"error_types"`
}

// KnowledgePointErrors reports accumulated mistakes for one concept.
type KnowledgePointErrors struct {
	KnowledgePointID uint      `json:"knowledge_point_id"`
	Name             string    `json:"name"`
	Chapter          string    `json:"chapter"`
	Count            int64     `json:"count"`
	LastErrorAt      time.Time `json:"last_error_at"`
}

// ErrorTypeCount reports accumulated mistakes for one error category.
type ErrorTypeCount struct {
	ErrorType string `json:"error_type"`
	Count     int64  `json:"count"`
}

// KnowledgePointResponse is one taxonomy node.
type KnowledgePointResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Chapter  string `json:"chapter"`
	Level    int    `json:"level"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// ReviewItem is one entry in the spaced-repetition review queue.
type ReviewItem struct {
	KnowledgePointID uint      `json:"knowledge_point_id"`
	Name             string    `json:"name"`
	Chapter          string    `json:"chapter"`
	ErrorCount       int64     `json:"error_count"`
	Mastery          float64   `json:"mastery"`
	LastErrorAt      time.Time `json:"last_error_at"`
	NextReviewAt     time.Time `json:"next_review_at"`
	Due              bool      `json:"due"`
}

// ReviewQueueResponse is the ordered review schedule for a user.
type ReviewQueueResponse struct {
	Items    []ReviewItem `json:"items"`
	DueCount int          `json:"due_count"`
}
