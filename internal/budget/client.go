package budget

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to a remote budget agent over HTTP. Every failure mode is
// fail-closed: an unreachable or misbehaving agent reads as an empty bucket
// and a rejected debit. Transport calls are not retried here; the scheduler
// polls again on its own cadence.
type Client struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
	logger   *slog.Logger
}

type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	User     string
	Password string
	Logger   *slog.Logger
}

type takeRequest struct {
	Joules float64 `json:"joules"`
}

type takeResponse struct {
	OK              bool    `json:"ok"`
	RemainingJoules float64 `json:"remaining_j"`
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 500 * time.Millisecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		user:     cfg.User,
		password: cfg.Password,
		logger:   logger,
	}
}

// Sample reads the agent's current sample. On any error it returns a zero
// sample: no energy is assumed to exist that the agent did not confirm.
func (c *Client) Sample() EnergySample {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/v1/sample", nil)
	if err != nil {
		return EnergySample{}
	}
	c.auth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("budget sample failed", "error", err)
		return EnergySample{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("budget sample rejected", "status", resp.StatusCode)
		return EnergySample{}
	}

	var sample EnergySample
	if err := json.NewDecoder(resp.Body).Decode(&sample); err != nil {
		c.logger.Debug("budget sample undecodable", "error", err)
		return EnergySample{}
	}

	if !sample.Verify() {
		c.logger.Warn("budget sample failed integrity check, discarding")
		return EnergySample{}
	}

	return sample
}

// Take attempts an atomic debit on the agent. Any transport or decode
// failure reads as a rejected debit.
func (c *Client) Take(joules float64) (bool, float64) {
	body, err := json.Marshal(takeRequest{Joules: joules})
	if err != nil {
		return false, 0
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/take", bytes.NewReader(body))
	if err != nil {
		return false, 0
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("budget take failed", "error", err)
		return false, 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("budget take rejected", "status", resp.StatusCode)
		return false, 0
	}

	var tr takeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		c.logger.Debug("budget take undecodable", "error", err)
		return false, 0
	}

	return tr.OK, tr.RemainingJoules
}

func (c *Client) auth(req *http.Request) {
	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}
}
