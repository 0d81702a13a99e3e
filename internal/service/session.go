package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aa-consent-gateway/internal/metrics"
	"aa-consent-gateway/internal/model"
	"aa-consent-gateway/internal/repository"
	"aa-consent-gateway/pkg/logger"
)

// SessionResolver reads and writes workflow session state in the session store
type SessionResolver struct {
	store   repository.SessionStore
	metrics *metrics.Registry
	logger  *logger.Logger
}

// NewSessionResolver creates a new session resolver
func NewSessionResolver(store repository.SessionStore, reg *metrics.Registry, log *logger.Logger) *SessionResolver {
	return &SessionResolver{
		store:   store,
		metrics: reg,
		logger:  log,
	}
}

// Resolve returns the session stored under key. A missing key, an empty
// value, a store failure and an undecodable blob all report ok=false.
func (r *SessionResolver) Resolve(ctx context.Context, key string) (*model.SessionRecord, bool) {
	log := r.logger.WithSessionKey(key)
	log.Info("Fetching session data")

	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		log.Error("Failed to retrieve session data", "error", fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err))
		r.metrics.SessionLookup(metrics.LookupError)
		return nil, false
	}
	if !found || raw == "" {
		log.Info("Session not found")
		r.metrics.SessionLookup(metrics.LookupMiss)
		return nil, false
	}

	var rec model.SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		log.Error("Failed to decode session data", "error", err)
		r.metrics.SessionLookup(metrics.LookupError)
		return nil, false
	}

	log.Info("Session data retrieved",
		"transaction_id", rec.TransactionID,
		"has_consent_handler", rec.ConsentHandler != "",
		"has_customer_id", rec.CustomerID != "",
	)
	r.metrics.SessionLookup(metrics.LookupHit)
	return &rec, true
}

// Save writes the complete record. A zero ttl stores it without expiry.
func (r *SessionResolver) Save(ctx context.Context, key string, rec *model.SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return r.SaveRaw(ctx, key, data, ttl)
}

// SaveRaw writes an already encoded session blob after checking it is a JSON object
func (r *SessionResolver) SaveRaw(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: session must be a JSON object: %w", model.ErrValidation, err)
	}

	r.logger.WithSessionKey(key).Info("Saving session data", "ttl", ttl.String())
	if err := r.store.Set(ctx, key, string(data), ttl); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

// Update shallow-merges updates into the stored record and rewrites it
// without expiry. Keys absent from updates are left untouched.
func (r *SessionResolver) Update(ctx context.Context, key string, updates map[string]any) error {
	log := r.logger.WithSessionKey(key)

	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	if !found || raw == "" {
		log.Info("Cannot update non-existent session")
		return model.ErrSessionNotFound
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &merged); err != nil {
		return fmt.Errorf("failed to decode stored session: %w", err)
	}
	if merged == nil {
		merged = make(map[string]json.RawMessage, len(updates))
	}

	fields := make([]string, 0, len(updates))
	for field, value := range updates {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %s: %w", field, err)
		}
		merged[field] = encoded
		fields = append(fields, field)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.store.Set(ctx, key, string(data), 0); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	log.Info("Session data updated", "updated_fields", fields)
	return nil
}

// Exists reports whether a session is stored under key
func (r *SessionResolver) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return exists, nil
}

// Delete removes the session stored under key
func (r *SessionResolver) Delete(ctx context.Context, key string) error {
	r.logger.WithSessionKey(key).Info("Deleting session")
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}
