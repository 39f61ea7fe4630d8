package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"buybizz/internal/apperror"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

type WebhookService interface {
	// HandleIdentityWebhook verifies and applies one identity-provider
	// delivery. Replays of an applied delivery are accepted and skipped.
	HandleIdentityWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type eventHandler func(ctx context.Context, event *model.IdentityWebhookEvent) error

type webhookServiceImpl struct {
	secret           string
	identityService  IdentityService
	userRepo         repository.UserRepository
	webhookEventRepo repository.WebhookEventRepository
	handlers         map[string]eventHandler
}

func NewWebhookService(
	secret string,
	identityService IdentityService,
	userRepo repository.UserRepository,
	webhookEventRepo repository.WebhookEventRepository,
) WebhookService {
	s := &webhookServiceImpl{
		secret:           secret,
		identityService:  identityService,
		userRepo:         userRepo,
		webhookEventRepo: webhookEventRepo,
	}
	s.handlers = map[string]eventHandler{
		EventUserCreated: s.upsertUser,
		EventUserUpdated: s.upsertUser,
		EventUserDeleted: s.deleteUser,
	}
	return s
}

func (s *webhookServiceImpl) HandleIdentityWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if s.secret == "" {
		return apperror.Config("webhook secret is not configured", nil)
	}
	wh, err := svix.NewWebhook(s.secret)
	if err != nil {
		return apperror.Config("webhook secret is invalid", err)
	}

	eventID, err := verifyWebhook(wh, headers, body)
	if err != nil {
		return apperror.Validation("invalid webhook signature").WithDetails(err.Error())
	}

	seen, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		slog.InfoContext(ctx, "identity webhook replayed", "event_id", eventID)
		return nil
	}

	var event model.IdentityWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperror.Validation("invalid webhook payload")
	}

	handle, ok := s.handlers[event.Type]
	if !ok {
		slog.InfoContext(ctx, "identity webhook ignored", "event_id", eventID, "type", event.Type)
		return nil
	}
	if event.Data.ID == "" {
		return apperror.Validation("webhook payload has no user id")
	}
	if err := handle(ctx, &event); err != nil {
		return fmt.Errorf("handle %s: %w", event.Type, err)
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, eventID, event.Type); err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	slog.InfoContext(ctx, "identity webhook applied", "event_id", eventID, "type", event.Type, "external_id", event.Data.ID)
	return nil
}

func (s *webhookServiceImpl) upsertUser(ctx context.Context, event *model.IdentityWebhookEvent) error {
	_, err := s.identityService.Sync(ctx, identityFromWebhook(&event.Data))
	return err
}

func (s *webhookServiceImpl) deleteUser(ctx context.Context, event *model.IdentityWebhookEvent) error {
	// deleting a user we never stored is not an error
	_, err := s.userRepo.DeleteByExternalID(ctx, event.Data.ID)
	return err
}

func identityFromWebhook(data *model.IdentityUserData) *model.Identity {
	email := ""
	for _, addr := range data.EmailAddresses {
		if addr.ID == data.PrimaryEmailAddressID {
			email = addr.EmailAddress
			break
		}
	}
	if email == "" && len(data.EmailAddresses) > 0 {
		email = data.EmailAddresses[0].EmailAddress
	}

	name := strings.TrimSpace(data.FirstName + " " + data.LastName)
	if name == "" {
		name = data.Username
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	return &model.Identity{
		ExternalID: data.ID,
		Email:      email,
		Name:       name,
	}
}
