package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles URL shortening operations.
type URLHandler struct {
	shortener  *shortener.Shortener
	store      shortener.Repository
	visits     shortener.VisitLister
	publishers *analytics.Publishers
	logger     *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	s *shortener.Shortener,
	store shortener.Repository,
	visits shortener.VisitLister,
	publishers *analytics.Publishers,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		shortener:  s,
		store:      store,
		visits:     visits,
		publishers: publishers,
		logger:     logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	var owner *int64
	if user := UserFromContext(ctx); user != nil {
		owner = &user.ID
	}

	shortURL, err := h.shortener.Shorten(ctx, req.Body.TargetURL, owner)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidURL):
			return nil, huma.Error400BadRequest("you have provided invalid url")
		case errors.Is(err, shortener.ErrKeySpaceExhausted):
			h.logger.Error("key space exhausted", zap.Error(err))

			return nil, huma.Error503ServiceUnavailable("no free short key available, try again later")
		default:
			h.logger.Error("failed to save url", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to save url")
		}
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLCreatedEvent{
		Key:       string(shortURL.Key),
		TargetURL: shortURL.TargetURL,
		IsGuest:   shortURL.IsGuest,
		UserID:    shortURL.UserID,
		CreatedAt: shortURL.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishers.URLCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}

	return &CreateShortURLResponse{Body: toURLInfo(shortURL)}, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	shortURL, err := h.store.GetActiveByKey(ctx, shortener.Key(req.Key))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, notFound(ctx)
		}

		h.logger.Error("failed to get url", zap.String("key", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLAccessedEvent{
		Key:        req.Key,
		AccessedAt: time.Now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err = h.publishers.URLAccessed(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusTemporaryRedirect,
		Location: shortURL.TargetURL,
	}, nil
}

// ListURLs returns the short URLs owned by the current user, newest first.
func (h *URLHandler) ListURLs(ctx context.Context, _ *struct{}) (*ListURLsResponse, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, errNotAuthenticated()
	}

	owned, err := h.store.ListByOwner(ctx, user.ID)
	if err != nil {
		h.logger.Error("failed to list urls", zap.Int64("user_id", user.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list urls")
	}

	resp := &ListURLsResponse{Body: make([]URLInfo, 0, len(owned))}
	for _, u := range owned {
		resp.Body = append(resp.Body, toURLInfo(u))
	}

	return resp, nil
}

func (h *URLHandler) GetAdminInfo(ctx context.Context, req *AdminRequest) (*AdminInfoResponse, error) {
	shortURL, err := h.bySecret(ctx, req.SecretKey)
	if err != nil {
		return nil, err
	}

	resp := &AdminInfoResponse{}
	resp.Body.URLInfo = toURLInfo(shortURL)
	resp.Body.IsGuest = shortURL.IsGuest
	resp.Body.CreatedAt = shortURL.CreatedAt

	return resp, nil
}

// ListVisitors returns who followed the short URL. Visits are recorded asynchronously,
// so the newest ones may be missing for a moment.
func (h *URLHandler) ListVisitors(ctx context.Context, req *AdminRequest) (*ListVisitorsResponse, error) {
	shortURL, err := h.bySecret(ctx, req.SecretKey)
	if err != nil {
		return nil, err
	}

	visits, err := h.visits.ListVisits(ctx, shortURL.Key)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, notFound(ctx)
		}

		h.logger.Error("failed to list visitors", zap.String("key", string(shortURL.Key)), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list visitors")
	}

	resp := &ListVisitorsResponse{Body: make([]VisitorInfo, 0, len(visits))}
	for _, v := range visits {
		resp.Body = append(resp.Body, VisitorInfo{
			IPAddress: v.IPAddress,
			UserAgent: v.UserAgent,
			VisitedAt: v.VisitedAt,
		})
	}

	return resp, nil
}

// DeleteURL deactivates a short URL. The row is kept so its key is never reissued.
func (h *URLHandler) DeleteURL(ctx context.Context, req *AdminRequest) (*DeleteURLResponse, error) {
	shortURL, err := h.bySecret(ctx, req.SecretKey)
	if err != nil {
		return nil, err
	}

	if err = h.store.Deactivate(ctx, shortURL.SecretKey); err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, notFound(ctx)
		}

		h.logger.Error("failed to deactivate url", zap.String("key", string(shortURL.Key)), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to delete url")
	}

	resp := &DeleteURLResponse{}
	resp.Body.Detail = fmt.Sprintf("Successfully deleted shortened URL for '%s'", shortURL.TargetURL)

	return resp, nil
}

func (h *URLHandler) bySecret(ctx context.Context, secret string) (*shortener.ShortURL, error) {
	shortURL, err := h.store.GetBySecretKey(ctx, shortener.SecretKey(secret))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, notFound(ctx)
		}

		h.logger.Error("failed to get url by secret", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return shortURL, nil
}

func notFound(ctx context.Context) error {
	return huma.Error404NotFound(fmt.Sprintf("URL '%s' doesn't exist", RequestMetaFromContext(ctx).URL))
}

func toURLInfo(u *shortener.ShortURL) URLInfo {
	return URLInfo{
		TargetURL: u.TargetURL,
		Clicks:    u.Clicks,
		IsActive:  u.IsActive,
		URL:       string(u.Key),
		AdminURL:  string(u.SecretKey),
	}
}
