package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nandaraf/famtask/internal/entity"
	"github.com/nandaraf/famtask/pkg/logger"
)

const taskIndex = "tasks"

// TaskDocument is the shape stored in Meilisearch. The expected answer is
// deliberately excluded.
type TaskDocument struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Subject string `json:"subject"`
	Status  string `json:"status"`
}

type SearchService interface {
	IndexTask(task *entity.Task) error
	DeleteTask(id string) error
	// SearchTasks searches the caller's own tasks by text.
	SearchTasks(userID uuid.UUID, query string, limit int) ([]TaskDocument, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        taskIndex,
		PrimaryKey: "id",
	})
	if err != nil {
		logger.Sugar().Warnw("failed to create meilisearch index", "index", taskIndex, "err", err)
	}

	filterableAttrs := []string{"user_id", "status", "subject"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err = s.client.Index(taskIndex).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		logger.Sugar().Warnw("failed to update filterable attributes", "index", taskIndex, "err", err)
	}
}

func (s *searchService) IndexTask(task *entity.Task) error {
	doc := TaskDocument{
		ID:      task.ID.String(),
		UserID:  task.UserID.String(),
		Title:   task.Title,
		Body:    s.sanitizer.Sanitize(task.Description),
		Subject: task.Subject,
		Status:  task.Status,
	}

	_, err := s.client.Index(taskIndex).AddDocuments([]TaskDocument{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeleteTask(id string) error {
	_, err := s.client.Index(taskIndex).DeleteDocument(id)
	return err
}

func (s *searchService) SearchTasks(userID uuid.UUID, query string, limit int) ([]TaskDocument, error) {
	if limit <= 0 {
		limit = 20
	}

	resp, err := s.client.Index(taskIndex).Search(query, &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("user_id = %q", userID.String()),
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, err
	}

	return decodeHits(resp.Hits), nil
}

func decodeHits(hits meilisearch.Hits) []TaskDocument {
	docs := make([]TaskDocument, 0, len(hits))
	for _, hit := range hits {
		var doc TaskDocument
		if err := hit.Decode(&doc); err != nil {
			logger.Sugar().Warnw("failed to decode search hit", "err", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

func strPtr(s string) *string {
	return &s
}
