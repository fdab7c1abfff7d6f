package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dtv-fixtures/internal/models"
)

const createTable = `CREATE TABLE IF NOT EXISTS fixture_personas (
	id              BIGSERIAL PRIMARY KEY,
	fixture         TEXT NOT NULL,
	fila_archivo    INT NOT NULL,
	nro_cliente     TEXT,
	nro_wo          TEXT,
	razon_creacion  TEXT,
	estado_cliente  TEXT,
	apellido_nombre TEXT,
	dni             TEXT,
	direccion       TEXT,
	cp              TEXT,
	localidad       TEXT,
	provincia       TEXT,
	telefono        TEXT,
	lat             DOUBLE PRECISION,
	lon             DOUBLE PRECISION,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var personaColumns = []string{
	"fixture", "fila_archivo", "nro_cliente", "nro_wo", "razon_creacion", "estado_cliente",
	"apellido_nombre", "dni", "direccion", "cp", "localidad", "provincia", "telefono", "lat", "lon",
}

type PgPersonaRepo struct{ db *pgxpool.Pool }

func NewPgPersonaRepo(db *pgxpool.Pool) *PgPersonaRepo { return &PgPersonaRepo{db: db} }

func (r *PgPersonaRepo) EnsureTable(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createTable)
	return err
}

// personaRows maps people to COPY rows; fila_archivo is the 1-based sheet row
// (the header is row 1).
func personaRows(fixture string, people []models.Person) [][]any {
	rows := make([][]any, len(people))
	for i, p := range people {
		loc := p.Loc()
		rows[i] = []any{
			fixture, i + 2, p.ClientID, p.WorkOrder, p.Reason, p.Status,
			p.FullName, p.DNI, p.Street, p.PostCode, p.Locality, p.Province, p.Phones[0],
			loc.Lat, loc.Lon,
		}
	}
	return rows
}

// InsertPersons replaces the rows of fixture with people.
func (r *PgPersonaRepo) InsertPersons(ctx context.Context, fixture string, people []models.Person) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM fixture_personas WHERE fixture=$1`, fixture); err != nil {
		return 0, fmt.Errorf("clear fixture %s: %w", fixture, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"fixture_personas"}, personaColumns, pgx.CopyFromRows(personaRows(fixture, people)))
	if err != nil {
		return 0, fmt.Errorf("copy fixture %s: %w", fixture, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// CountByPhone returns how many rows of fixture carry each phone.
func (r *PgPersonaRepo) CountByPhone(ctx context.Context, fixture string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT telefono, COUNT(*) FROM fixture_personas WHERE fixture=$1 GROUP BY telefono`, fixture)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var phone string
		var n int
		if err := rows.Scan(&phone, &n); err != nil {
			return nil, err
		}
		out[phone] = n
	}
	return out, rows.Err()
}
