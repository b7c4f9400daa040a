package gmail

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"jobtracker_backend/internal/logger"
	"jobtracker_backend/pkg/apperrors"
)

const (
	DefaultQuery      = "subject:(application OR interview OR offer OR rejected) newer_than:30d"
	DefaultMaxResults = 50
)

// ScanResult carries the recognized candidates and the possibly refreshed token.
type ScanResult struct {
	Scanned    int
	Candidates []Candidate
	Token      *oauth2.Token
}

// Scanner reads a mailbox for application updates.
type Scanner interface {
	Scan(ctx context.Context, token *oauth2.Token, query string) (*ScanResult, error)
}

type scanner struct {
	oauthCfg   *oauth2.Config
	maxResults int64
}

// NewScanner uses oauthCfg to refresh expired access tokens.
func NewScanner(oauthCfg *oauth2.Config) Scanner {
	return &scanner{oauthCfg: oauthCfg, maxResults: DefaultMaxResults}
}

func (s *scanner) Scan(ctx context.Context, token *oauth2.Token, query string) (*ScanResult, error) {
	if query == "" {
		query = DefaultQuery
	}

	ts := oauth2.ReuseTokenSource(token, s.oauthCfg.TokenSource(ctx, token))
	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, apperrors.ErrExternalService(err, apperrors.ServiceGmail)
	}

	list, err := svc.Users.Messages.List("me").Q(query).MaxResults(s.maxResults).Context(ctx).Do()
	if err != nil {
		logger.CtxWithError(ctx, "Gmail list failed", err)
		return nil, apperrors.ErrExternalService(fmt.Errorf("list messages: %w", err), apperrors.ServiceGmail)
	}

	result := &ScanResult{}
	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Context(ctx).
			Do()
		if err != nil {
			// one unreadable message must not abort the import
			logger.CtxWarn(ctx, "Skipping Gmail message", "messageId", ref.Id, "error", err)
			continue
		}
		result.Scanned++
		if c, ok := Classify(toMessage(msg)); ok {
			result.Candidates = append(result.Candidates, c)
		}
	}

	if tok, err := ts.Token(); err == nil {
		result.Token = tok
	}
	logger.CtxInfo(ctx, "Gmail scan finished", "scanned", result.Scanned, "matched", len(result.Candidates))
	return result, nil
}

func toMessage(m *gmailapi.Message) Message {
	msg := Message{
		ID:       m.Id,
		ThreadID: m.ThreadId,
		Snippet:  m.Snippet,
		Date:     time.UnixMilli(m.InternalDate).UTC(),
	}
	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			switch h.Name {
			case "From":
				msg.From = h.Value
			case "Subject":
				msg.Subject = h.Value
			}
		}
	}
	return msg
}
