package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nursing-quiz-service/internal/domain"
)

// Client talks to an upstream content API exposing
// GET /api/quiz/questions and POST /api/quiz/results.
type Client struct {
	baseURL string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	h := &http.Client{Timeout: 10 * time.Second}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{baseURL: strings.TrimSuffix(cfg.BaseURL, "/"), http: h}
}

// LoadQuestions fetches questions; no retries are attempted.
func (c *Client) LoadQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	u, err := url.Parse(c.baseURL + "/api/quiz/questions")
	if err != nil {
		return nil, err
	}
	p := u.Query()
	p.Set("examType", query.ExamType)
	if query.Difficulty != "" {
		p.Set("difficulty", string(query.Difficulty))
	}
	if query.Category != "" {
		p.Set("category", query.Category)
	}
	if query.Limit > 0 {
		p.Set("limit", strconv.Itoa(query.Limit))
	}
	u.RawQuery = p.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch questions: %s", res.Status)
	}
	var questions []domain.Question
	if err := json.NewDecoder(res.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	for i := range questions {
		if questions[i].ExamType == "" {
			questions[i].ExamType = query.ExamType
		}
	}
	if query.Limit > 0 && len(questions) > query.Limit {
		questions = questions[:query.Limit]
	}
	return questions, nil
}

// Record posts a result to the upstream recording endpoint.
func (c *Client) Record(ctx context.Context, result domain.Result) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/quiz/results", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post result: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("post result: %s", res.Status)
	}
	return nil
}
