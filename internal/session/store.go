// Package session provides the browser-session ticket store backing the
// OTP-gated credential flows. Tickets are scoped per session and per flow
// namespace; at most one ticket is in flight per namespace, and writing a
// new one overwrites the old.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace identifies which flow a ticket belongs to.
type Namespace string

const (
	NamespaceRegister      Namespace = "otp_register"
	NamespaceLogin         Namespace = "otp_login"
	NamespaceReset         Namespace = "password_reset"
	NamespaceResetVerified Namespace = "password_reset_verified"
)

// Ticket holds the in-flight flow state for one namespace.
type Ticket struct {
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store persists session tickets in Redis hashes keyed by session ID.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a store with the given session lifetime.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

// PutTicket writes (overwriting) the ticket for a namespace and refreshes the
// session TTL.
func (s *Store) PutTicket(ctx context.Context, sessionID string, ns Namespace, ticket Ticket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, string(ns), payload)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// GetTicket returns the ticket for a namespace, or nil when none is stored.
func (s *Store) GetTicket(ctx context.Context, sessionID string, ns Namespace) (*Ticket, error) {
	raw, err := s.client.HGet(ctx, sessionKey(sessionID), string(ns)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ticket Ticket
	if err := json.Unmarshal([]byte(raw), &ticket); err != nil {
		return nil, fmt.Errorf("unmarshal ticket: %w", err)
	}
	return &ticket, nil
}

// ClearTickets removes the tickets for the given namespaces.
func (s *Store) ClearTickets(ctx context.Context, sessionID string, namespaces ...Namespace) error {
	if len(namespaces) == 0 {
		return nil
	}
	fields := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		fields = append(fields, string(ns))
	}
	return s.client.HDel(ctx, sessionKey(sessionID), fields...).Err()
}

// Rename moves all session state from one session ID to another. Used when
// the session ID is rotated after login.
func (s *Store) Rename(ctx context.Context, oldID, newID string) error {
	err := s.client.Rename(ctx, sessionKey(oldID), sessionKey(newID)).Err()
	if err == redis.Nil || (err != nil && err.Error() == "ERR no such key") {
		return nil
	}
	return err
}

// Destroy drops all state for a session.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}
