package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"mahzen-backend/internal/config"
)

// Line: Harici sistemin bildirdiği beklenen stok satırı
type Line struct {
	ProductID      uint    `json:"product_id"`
	ExpectedAmount float64 `json:"expected_amount"`
	ExpectedUnit   string  `json:"expected_unit"`
}

// Source: Beklenen stok kaynağı (POS/ERP). Idempotent çağrılabilir;
// lokasyonda kayıt yoksa hata değil boş liste döner.
type Source interface {
	LoadExpectedStock(ctx context.Context, locationID *uint) ([]Line, error)
}

// HTTPSource: Source'un HTTP implementasyonu. Tüm çağrılar
// cfg.UpstreamTimeout ile sınırlıdır, sonsuza kadar bekleme yok.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPSource(cfg *config.Config) *HTTPSource {
	return &HTTPSource{
		baseURL: cfg.StockAPIBaseURL,
		token:   cfg.StockAPIToken,
		client:  &http.Client{Timeout: cfg.UpstreamTimeout},
	}
}

func (s *HTTPSource) LoadExpectedStock(ctx context.Context, locationID *uint) ([]Line, error) {
	u := s.baseURL + "/expected-stock"
	if locationID != nil {
		u += "?location_id=" + url.QueryEscape(fmt.Sprint(*locationID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("beklenen stok servisi yanıt vermedi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("beklenen stok servisi hata döndü: %s", resp.Status)
	}

	var lines []Line
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		return nil, fmt.Errorf("beklenen stok yanıtı çözümlenemedi: %w", err)
	}

	return lines, nil
}
