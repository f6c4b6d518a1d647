// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/legalease-ai/legalease/internal/store"
	lerr "github.com/legalease-ai/legalease/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface checks.
var (
	_ store.VectorStore    = (*VectorStore)(nil)
	_ store.MetadataLister = (*VectorStore)(nil)
)

// candidateSlack is how many rows beyond k are pulled from SQL before the
// float64 re-score. sqlite-vec computes cosine distance in float32, so rows
// whose scores differ by less than ~1e-6 can swap places in SQL order.
const candidateSlack = 16

// VectorStore implements store.VectorStore on a single SQLite table. Each
// AddDocuments call is one transaction, so a batch is either fully present
// after a restart or absent. Ids come from AUTOINCREMENT and are never
// reused.
type VectorStore struct {
	db      *sql.DB
	dim     int
	writeMu sync.Mutex
}

// NewVectorStore opens (or creates) a SQLite database at dbPath. Reopening an
// existing database with a different dimension fails.
func NewVectorStore(dbPath string, dim int) (*VectorStore, error) {
	if dim <= 0 {
		return nil, lerr.Errorf(lerr.CodeStoreVectorAddInvalid, "embedding dimension must be positive, got %d", dim)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "opening sqlite db")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "pinging sqlite db")
	}

	if err := migrate(db, dim); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &VectorStore{db: db, dim: dim}, nil
}

func migrate(db *sql.DB, dim int) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS store_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS fragments (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	text      TEXT NOT NULL,
	metadata  TEXT NOT NULL DEFAULT '{}',
	embedding BLOB NOT NULL,
	norm      REAL NOT NULL
)`
	if _, err := db.Exec(ddl); err != nil {
		return lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "creating fragment tables")
	}

	if _, err := db.Exec(`INSERT OR IGNORE INTO store_meta(key, value) VALUES ('embedding_dim', ?)`, strconv.Itoa(dim)); err != nil {
		return lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "recording embedding dimension")
	}

	var stored string
	if err := db.QueryRow(`SELECT value FROM store_meta WHERE key = 'embedding_dim'`).Scan(&stored); err != nil {
		return lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "reading embedding dimension")
	}
	if stored != strconv.Itoa(dim) {
		existing, _ := strconv.Atoi(stored)
		return lerr.New(lerr.CodeStoreVectorOpenDimensionMismatch,
			"database was created with a different embedding dimension",
			lerr.FieldDimensions(existing, dim)...)
	}
	return nil
}

func (v *VectorStore) AddDocuments(ctx context.Context, fragments []store.Fragment, embeddings [][]float32) ([]int64, error) {
	if err := store.ValidateAdd(v.dim, fragments, embeddings); err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return []int64{}, nil
	}

	blobs := make([][]byte, len(embeddings))
	metas := make([]string, len(fragments))
	for i := range fragments {
		blob, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "serializing embedding")
		}
		blobs[i] = blob

		metas[i] = "{}"
		if len(fragments[i].Metadata) > 0 {
			raw, err := json.Marshal(fragments[i].Metadata)
			if err != nil {
				return nil, lerr.Wrap(err, lerr.CodeStoreVectorAddInvalid, "marshalling metadata")
			}
			metas[i] = string(raw)
		}
	}

	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fragments(text, metadata, embedding, norm) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "preparing insert")
	}
	defer func() { _ = stmt.Close() }()

	ids := make([]int64, len(fragments))
	for i := range fragments {
		res, err := stmt.ExecContext(ctx, fragments[i].Text, metas[i], blobs[i], store.Norm(embeddings[i]))
		if err != nil {
			return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, fmt.Sprintf("inserting fragment %d", i))
		}
		if ids[i], err = res.LastInsertId(); err != nil {
			return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "reading fragment id")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "committing fragments")
	}
	return ids, nil
}

// SimilaritySearch orders candidates with vec_distance_cosine in SQL, then
// re-scores them in float64 so that scores agree with the in-memory
// backends. Zero-norm rows and zero-norm queries get distance 1, score 0.
func (v *VectorStore) SimilaritySearch(ctx context.Context, query []float32, k int) ([]store.RetrievalResult, error) {
	if err := store.ValidateQuery(v.dim, query, k); err != nil {
		return nil, err
	}

	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "serializing query vector")
	}
	qNorm := store.Norm(query)

	const q = `SELECT id, text, metadata, embedding, norm,
	CASE WHEN norm = 0 OR ? = 0 THEN 1.0 ELSE vec_distance_cosine(embedding, ?) END AS distance
FROM fragments
ORDER BY distance ASC, id ASC
LIMIT ?`

	limit := k + candidateSlack
	if limit < k {
		limit = k
	}
	rows, err := v.db.QueryContext(ctx, q, qNorm, blob, limit)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "searching fragments")
	}
	defer func() { _ = rows.Close() }()

	type candidate struct {
		frag store.Fragment
		emb  []float32
		norm float64
	}
	var cands []candidate
	for rows.Next() {
		var (
			c        candidate
			metaStr  string
			embBlob  []byte
			distance float64
		)
		if err := rows.Scan(&c.frag.ID, &c.frag.Text, &metaStr, &embBlob, &c.norm, &distance); err != nil {
			return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "scanning fragment")
		}
		if c.frag.Metadata, err = decodeMetadata(metaStr); err != nil {
			return nil, err
		}
		if c.emb, err = deserializeFloat32(embBlob); err != nil {
			return nil, err
		}
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "iterating fragments")
	}

	// Positions must follow insertion order for the tie-break.
	sort.Slice(cands, func(i, j int) bool { return cands[i].frag.ID < cands[j].frag.ID })
	top := store.NewTopK(k)
	for i, c := range cands {
		top.Push(store.Scored{Pos: i, Score: store.CosineWithNorms(query, c.emb, qNorm, c.norm)})
	}

	ranked := top.Sorted()
	results := make([]store.RetrievalResult, 0, len(ranked))
	for _, sc := range ranked {
		results = append(results, store.RetrievalResult{Fragment: cands[sc.Pos].frag, Score: sc.Score})
	}
	return results, nil
}

func (v *VectorStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := v.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&n); err != nil {
		return 0, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "counting fragments")
	}
	return n, nil
}

func (v *VectorStore) Dimension() int { return v.dim }

// MetadataValues reads key with json_extract; non-string values are skipped.
func (v *VectorStore) MetadataValues(ctx context.Context, key string) ([]string, error) {
	if key == "" || strings.Contains(key, `"`) {
		return nil, lerr.Errorf(lerr.CodeStoreVectorSearchInvalid, "invalid metadata key %q", key)
	}
	path := `$."` + key + `"`
	rows, err := v.db.QueryContext(ctx, `SELECT DISTINCT json_extract(metadata, ?1) AS value
FROM fragments
WHERE json_type(metadata, ?1) = 'text'
ORDER BY value`, path)
	if err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "listing metadata values")
	}
	defer func() { _ = rows.Close() }()

	values := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "scanning metadata value")
		}
		values = append(values, s)
	}
	if err := rows.Err(); err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "iterating metadata values")
	}
	return values, nil
}

// Close closes the underlying database connection.
func (v *VectorStore) Close() error {
	return v.db.Close()
}

// decodeMetadata keeps integers as int64 instead of json's float64.
func decodeMetadata(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, lerr.Wrap(err, lerr.CodeStoreDatabaseFailure, "unmarshalling fragment metadata")
	}
	for key, value := range m {
		num, ok := value.(json.Number)
		if !ok {
			continue
		}
		if i, err := num.Int64(); err == nil {
			m[key] = i
		} else if f, err := num.Float64(); err == nil {
			m[key] = f
		}
	}
	return m, nil
}

// deserializeFloat32 reverses sqlite_vec.SerializeFloat32 (little-endian).
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, lerr.Wrap(errors.New("blob length not a multiple of 4"), lerr.CodeStoreDatabaseFailure, "decoding embedding")
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}
