package questionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/question-import-service/internal/auth"
	"github.com/SAP-F-2025/question-import-service/internal/models"
	"github.com/SAP-F-2025/question-import-service/internal/services"
)

const (
	questionsPath = "/questions"

	maxErrorBody = 4 << 10
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client creates questions on the question API, one request per question.
type Client struct {
	baseURL     string
	http        *http.Client
	credentials auth.CredentialProvider
	logger      *slog.Logger
}

var _ services.QuestionCreator = (*Client)(nil)

func NewClient(cfg Config, credentials auth.CredentialProvider, logger *slog.Logger) *Client {
	h := &http.Client{}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        h,
		credentials: credentials,
		logger:      logger,
	}
}

type createQuestionResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// CreateQuestion posts one question. Transport errors are returned as is;
// a non-2xx status or success=false becomes a *services.SubmissionError.
func (c *Client) CreateQuestion(ctx context.Context, question *models.ParsedQuestion) error {
	body, err := json.Marshal(question)
	if err != nil {
		return fmt.Errorf("failed to encode question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+questionsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("question api request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("failed to read question api response: %w", err)
	}

	var decoded createQuestionResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if res.StatusCode/100 != 2 {
		message := decoded.Message
		if decodeErr != nil || message == "" {
			message = strings.TrimSpace(string(raw))
		}
		if message == "" {
			message = res.Status
		}
		return &services.SubmissionError{StatusCode: res.StatusCode, Message: message}
	}

	if decodeErr == nil && decoded.Success != nil && !*decoded.Success {
		message := decoded.Message
		if message == "" {
			message = "question was not created"
		}
		return &services.SubmissionError{StatusCode: res.StatusCode, Message: message}
	}

	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.credentials == nil {
		return nil
	}

	token, err := c.credentials.Token(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNoCredentials) {
			c.logger.Debug("Calling question api without credentials", "error", err)
			return nil
		}
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
