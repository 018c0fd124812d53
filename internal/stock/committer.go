package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mahzen-backend/internal/config"
)

// CommitLine: Onaylanan oturumun harici sisteme gönderilen satırı
type CommitLine struct {
	ProductID    uint    `json:"product_id"`
	Expected     float64 `json:"expected"`
	CountedUnits float64 `json:"counted_units"` // kapalı + kesirli (açık şişe) toplamı
	Variance     float64 `json:"variance"`
}

// Committer: Onaylanan oturumu harici stok sistemine commit eder.
// Aynı oturum koduyla tekrar gönderim güvenlidir (idempotent).
type Committer interface {
	SubmitApprovedSession(ctx context.Context, sessionID uint, code string, lines []CommitLine) (documentID string, err error)
}

type HTTPCommitter struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPCommitter(cfg *config.Config) *HTTPCommitter {
	return &HTTPCommitter{
		baseURL: cfg.StockAPIBaseURL,
		token:   cfg.StockAPIToken,
		client:  &http.Client{Timeout: cfg.UpstreamTimeout},
	}
}

func (h *HTTPCommitter) SubmitApprovedSession(ctx context.Context, sessionID uint, code string, lines []CommitLine) (string, error) {
	payload := struct {
		SessionID uint         `json:"session_id"`
		Lines     []CommitLine `json:"lines"`
	}{SessionID: sessionID, Lines: lines}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	// PUT + oturum kodu: aynı isteğin tekrarı harici sistemde yeni belge açmaz
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.baseURL+"/adjustments/"+code, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stok sistemi yanıt vermedi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("stok sistemi commit'i reddetti: %s", resp.Status)
	}

	var result struct {
		DocumentID string `json:"document_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("commit yanıtı çözümlenemedi: %w", err)
	}

	return result.DocumentID, nil
}
