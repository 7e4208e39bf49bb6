// Package telegram is a minimal Bot API client: long-poll updates in, text
// messages out. It knows nothing about the ledger; the handler it is given
// produces every reply.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"caixa/internal/log"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	pollTimeout    = 30 * time.Second
	errorBackoff   = 5 * time.Second
)

// Handler produces the reply for one incoming text message. An empty reply
// means nothing is sent back.
type Handler func(ctx context.Context, chatID int64, text string) string

type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
	logger  *log.Logger
}

type Option func(*Client)

// WithBaseURL points the client at a different API host, for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func NewClient(token string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: pollTimeout + 10*time.Second},
		logger:  logger.WithComponent(log.ComponentTelegram),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	Chat chat   `json:"chat"`
	Text string `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendMessage posts one text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	_, err := c.call(ctx, "sendMessage", form)
	return err
}

// Deliver implements the notifier's delivery contract.
func (c *Client) Deliver(ctx context.Context, target, text string) error {
	return c.SendMessage(ctx, target, text)
}

// Poll runs the getUpdates loop until the context is cancelled, dispatching
// each text message to the handler and sending back its reply.
func (c *Client) Poll(ctx context.Context, handler Handler) error {
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		updates, err := c.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.WarnContext(ctx, "getUpdates failed, backing off", log.FieldError, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(errorBackoff):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			reply := handler(ctx, u.Message.Chat.ID, u.Message.Text)
			if reply == "" {
				continue
			}
			chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
			if err := c.SendMessage(ctx, chatID, reply); err != nil {
				c.logger.WarnContext(ctx, "failed to send reply",
					log.FieldChatID, chatID, log.FieldError, err)
			}
		}
	}
}

func (c *Client) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	form := url.Values{}
	form.Set("timeout", strconv.Itoa(int(pollTimeout/time.Second)))
	if offset > 0 {
		form.Set("offset", strconv.FormatInt(offset, 10))
	}
	raw, err := c.call(ctx, "getUpdates", form)
	if err != nil {
		return nil, err
	}
	var updates []update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, form url.Values) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}
	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("%s: decode response (status %d): %w", method, resp.StatusCode, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("%s: api error: %s", method, api.Description)
	}
	return api.Result, nil
}
