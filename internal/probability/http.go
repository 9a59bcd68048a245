package probability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// HTTPSource queries a remote probability endpoint that takes the board as a JSON array.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPSource{url: url, client: client}
}

func (that *HTTPSource) Probability(ctx context.Context, board entity.Board) (Split, error) {
	body, err := json.Marshal(board)
	if err != nil {
		return Split{}, fmt.Errorf("failed to marshal board: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.url, bytes.NewReader(body))
	if err != nil {
		return Split{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return Split{}, fmt.Errorf("probability request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Split{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var split Split
	if err = json.NewDecoder(resp.Body).Decode(&split); err != nil {
		return Split{}, fmt.Errorf("failed to decode probability: %w", err)
	}

	return split, nil
}
