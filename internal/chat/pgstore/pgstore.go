// Package pgstore provides a PostgreSQL implementation of chat.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/salus/internal/chat"
	"github.com/linnemanlabs/salus/internal/engine"
	"github.com/linnemanlabs/salus/internal/kb"
)

var tracer = otel.Tracer("github.com/linnemanlabs/salus/internal/chat/pgstore")

//go:embed schema.sql
var schema string

// Store persists conversations in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// GetContext retrieves the latest engine context for a conversation.
func (s *Store) GetContext(ctx context.Context, conversationID string) (engine.Context, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetContext", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	var (
		cc            engine.Context
		followupsJSON []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT last_category, followups, turn_count FROM conversations WHERE id = $1`,
		conversationID,
	).Scan(&cc.LastCategory, &followupsJSON, &cc.TurnCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return engine.Context{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return engine.Context{}, false, fmt.Errorf("get context: %w", err)
	}

	if len(followupsJSON) > 0 {
		if err := json.Unmarshal(followupsJSON, &cc.ActiveFollowups); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return engine.Context{}, false, fmt.Errorf("unmarshal followups: %w", err)
		}
	}
	return cc, true, nil
}

// PutContext upserts the engine context for a conversation.
func (s *Store) PutContext(ctx context.Context, conversationID string, cc engine.Context) error {
	ctx, span := tracer.Start(ctx, "pgstore.PutContext", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	followups := cc.ActiveFollowups
	if followups == nil {
		followups = []string{}
	}
	followupsJSON, err := json.Marshal(followups)
	if err != nil {
		return fmt.Errorf("marshal followups: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO conversations (id, last_category, followups, turn_count, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			last_category = EXCLUDED.last_category,
			followups     = EXCLUDED.followups,
			turn_count    = EXCLUDED.turn_count,
			updated_at    = EXCLUDED.updated_at`,
		conversationID, cc.LastCategory, followupsJSON, cc.TurnCount, time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("put context: %w", err)
	}
	return nil
}

// AppendMessage inserts one transcript message.
func (s *Store) AppendMessage(ctx context.Context, m *chat.Message) error {
	ctx, span := tracer.Start(ctx, "pgstore.AppendMessage", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, body, category, severity, is_emergency, turn, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.ConversationID, string(m.Role), m.Text, m.Category, string(m.Severity),
		m.IsEmergency, m.Turn, m.CreatedAt.UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Transcript returns a conversation's messages in turn order. User
// messages sort before bot messages within a turn because they are
// inserted first and ULIDs are lexically ordered by creation time.
func (s *Store) Transcript(ctx context.Context, conversationID string) ([]chat.Message, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Transcript", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, role, body, category, severity, is_emergency, turn, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY turn, created_at, id`,
		conversationID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	out := []chat.Message{}
	for rows.Next() {
		m := chat.Message{ConversationID: conversationID}
		var role, severity string
		if err := rows.Scan(&m.ID, &role, &m.Text, &m.Category, &severity, &m.IsEmergency, &m.Turn, &m.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = chat.Role(role)
		m.Severity = kb.Severity(severity)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate transcript: %w", err)
	}
	return out, nil
}
