package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailHandler pulls resume attachments out of a Gmail inbox into the
// uploads directory.
type GmailHandler struct {
	service    *gmail.Service
	uploadsDir string
	logger     *zap.Logger
}

// NewGmailHandler creates a Gmail handler. It reads OAuth credentials from
// credentials.json and a cached token from token.json in the working
// directory.
func NewGmailHandler(ctx context.Context, uploadsDir string, logger *zap.Logger) (*GmailHandler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	b, err := os.ReadFile("credentials.json")
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client, err := getClient(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailHandler{
		service:    srv,
		uploadsDir: uploadsDir,
		logger:     logger,
	}, nil
}

// getClient builds an authorized HTTP client from the cached token.
func getClient(ctx context.Context, config *oauth2.Config) (*http.Client, error) {
	tok, err := tokenFromFile("token.json")
	if err != nil {
		return nil, fmt.Errorf("no cached OAuth token; authorize via %s and save token.json: %w",
			config.AuthCodeURL("state-token", oauth2.AccessTypeOffline), err)
	}
	return config.Client(ctx, tok), nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// FetchAttachments downloads every supported attachment from messages
// matching the subject into the uploads directory and returns the stored
// filenames.
func (gh *GmailHandler) FetchAttachments(subject string) ([]string, error) {
	if err := os.MkdirAll(gh.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	user := "me"
	query := fmt.Sprintf("subject:%s has:attachment", subject)

	r, err := gh.service.Users.Messages.List(user).Q(query).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}
	if len(r.Messages) == 0 {
		return nil, fmt.Errorf("no messages found with subject: %s", subject)
	}

	var saved []string
	for _, msg := range r.Messages {
		message, err := gh.service.Users.Messages.Get(user, msg.Id).Do()
		if err != nil {
			gh.logger.Warn("unable to retrieve message", zap.String("id", msg.Id), zap.Error(err))
			continue
		}

		senderName := extractSenderName(message)

		for _, part := range message.Payload.Parts {
			if part.Filename == "" || part.Body.AttachmentId == "" {
				continue
			}
			if !SupportedExtension(part.Filename) {
				gh.logger.Debug("skipping unsupported attachment", zap.String("filename", part.Filename))
				continue
			}

			attachment, err := gh.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Do()
			if err != nil {
				gh.logger.Warn("unable to retrieve attachment", zap.Error(err))
				continue
			}

			data, err := base64.URLEncoding.DecodeString(attachment.Data)
			if err != nil {
				gh.logger.Warn("unable to decode attachment", zap.Error(err))
				continue
			}

			filename := fmt.Sprintf("%s_%s", senderName, filepath.Base(part.Filename))
			filePath := filepath.Join(gh.uploadsDir, filename)
			if err := os.WriteFile(filePath, data, 0644); err != nil {
				gh.logger.Warn("unable to write attachment", zap.String("path", filePath), zap.Error(err))
				continue
			}

			gh.logger.Info("downloaded attachment", zap.String("filename", filename))
			saved = append(saved, filename)
		}
	}

	return saved, nil
}

// extractSenderName pulls a filesystem-safe sender name from the From header.
func extractSenderName(message *gmail.Message) string {
	for _, header := range message.Payload.Headers {
		if header.Name != "From" {
			continue
		}
		from := header.Value
		if idx := strings.Index(from, "<"); idx > 0 {
			name := strings.TrimSpace(from[:idx])
			return strings.ReplaceAll(name, " ", "")
		}
		if idx := strings.Index(from, "@"); idx > 0 {
			return from[:idx]
		}
		return "Unknown"
	}
	return "Unknown"
}
