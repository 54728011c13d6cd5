package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cardhub/internal/logger"
)

const DefaultSMSEndpoint = "https://api.mobizon.kz/service/message/sendsmsmessage"

// SMSService texts the on-call operators through the Mobizon HTTP API.
type SMSService struct {
	APIKey     string
	Sender     string
	Recipients []string
	Endpoint   string
	// DryRun logs the message instead of sending it.
	DryRun bool

	client *http.Client
	log    *logger.Logger
}

type smsResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

func NewSMSService(apiKey, sender string, recipients []string, dryRun bool, log *logger.Logger) *SMSService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SMSService{
		APIKey:     apiKey,
		Sender:     sender,
		Recipients: recipients,
		Endpoint:   DefaultSMSEndpoint,
		DryRun:     dryRun || apiKey == "",
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (s *SMSService) NotifyCascade(ctx context.Context, notice CascadeNotice) error {
	if len(s.Recipients) == 0 {
		return nil
	}
	text := smsText(notice)
	for _, to := range s.Recipients {
		if err := s.send(ctx, to, text); err != nil {
			return err
		}
	}
	return nil
}

func (s *SMSService) send(ctx context.Context, to, text string) error {
	if s.DryRun {
		s.log.Info("[sms][dry-run] message", "recipient", to, "sender", s.Sender, "text", text)
		return nil
	}

	form := url.Values{
		"apiKey":    {s.APIKey},
		"recipient": {to},
		"text":      {text},
	}
	if s.Sender != "" {
		form.Set("from", s.Sender)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read sms response: %w", err)
	}
	var result smsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parse sms response (status %d): %w", resp.StatusCode, err)
	}
	if result.Code != 0 {
		return fmt.Errorf("mobizon returned error code %d: %s", result.Code, result.Message)
	}
	s.log.Debug("[sms] sent", "recipient", to, "message_id", result.Data.MessageID)
	return nil
}

func smsText(n CascadeNotice) string {
	return fmt.Sprintf("cardhub: %s #%d deactivated on %s, %d contract(s) closed: %s",
		n.Cause, n.EntityID, n.EffectiveDate, len(n.Contracts), contractIDs(n.Contracts))
}
