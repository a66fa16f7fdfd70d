package vector

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/summarizer/api/internal/client"
	"github.com/summarizer/api/internal/config"
)

// Indexer chunks subtitle text, embeds the chunks and stores them in a
// pgvector table so transcripts become searchable.
type Indexer struct {
	pool     *pgxpool.Pool
	embedder *client.EmbedClient
	table    string
}

// NewIndexer connects to Postgres and prepares the chunk table. Returns an
// error when the database is unreachable; callers may treat the indexer as
// optional and continue without it.
func NewIndexer(ctx context.Context, cfg config.VectorConfig, embedder *client.EmbedClient) (*Indexer, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	idx := &Indexer{
		pool:     pool,
		embedder: embedder,
		table:    cfg.Table,
	}
	if err := idx.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the connection pool
func (i *Indexer) Close() {
	i.pool.Close()
}

func (i *Indexer) ensureSchema(ctx context.Context) error {
	if _, err := i.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id        bigserial PRIMARY KEY,
		doc       text NOT NULL,
		username  text NOT NULL,
		chunk_no  int  NOT NULL,
		content   text NOT NULL,
		embedding vector(%d),
		UNIQUE (doc, username, chunk_no)
	)`, i.table, i.embedder.VectorDim())
	if _, err := i.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create chunk table: %w", err)
	}
	return nil
}

// IndexVtt embeds the text of a subtitle file and upserts its chunks.
// Previously indexed chunks for the same document are replaced.
func (i *Indexer) IndexVtt(ctx context.Context, doc, user, vttContent string) error {
	chunks := ChunkVtt(vttContent, defaultChunkTokens)
	if len(chunks) == 0 {
		log.Printf("No text extracted from %s, skipping index", doc)
		return nil
	}

	embeddings, err := i.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed %s: %w", doc, err)
	}

	tx, err := i.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE doc = $1 AND username = $2", i.table),
		doc, user); err != nil {
		return fmt.Errorf("failed to clear old chunks: %w", err)
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (doc, username, chunk_no, content, embedding) VALUES ($1, $2, $3, $4, $5)",
		i.table)
	for n, chunk := range chunks {
		if _, err := tx.Exec(ctx, insert, doc, user, n, chunk, pgvector.NewVector(embeddings[n])); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", n, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("Indexed %d chunks for %s (%s)", len(chunks), doc, user)
	return nil
}

// Search returns the chunks nearest to the query embedding for one user
func (i *Indexer) Search(ctx context.Context, user, query string, limit int) ([]string, error) {
	embeddings, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	rows, err := i.pool.Query(ctx,
		fmt.Sprintf("SELECT content FROM %s WHERE username = $1 ORDER BY embedding <=> $2 LIMIT $3", i.table),
		user, pgvector.NewVector(embeddings[0]), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		out = append(out, content)
	}
	return out, rows.Err()
}
