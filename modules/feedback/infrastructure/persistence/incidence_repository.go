package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/wI2L/jsondiff"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/pkg/composables"
)

type IncidenceRepository struct{}

func NewIncidenceRepository() *IncidenceRepository {
	return &IncidenceRepository{}
}

func (r *IncidenceRepository) GetByID(ctx context.Context, id int64) (incidence.Incidence, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return incidence.Incidence{}, err
	}

	row := tx.QueryRow(ctx, `
		SELECT id, sector, schema_id, fields, created_at, updated_at
		FROM incidences
		WHERE id = $1
	`, id)
	return scanIncidence(row)
}

func (r *IncidenceRepository) GetPaginated(ctx context.Context, params *incidence.FindParams) ([]incidence.Incidence, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := ""
	args := []any{params.Limit, params.Offset}
	if params.Sector != "" {
		where = "WHERE sector = $3"
		args = append(args, string(params.Sector))
	}

	rows, err := tx.Query(ctx, `
		SELECT id, sector, schema_id, fields, created_at, updated_at
		FROM incidences
		`+where+`
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []incidence.Incidence
	for rows.Next() {
		inc, err := scanIncidence(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countArgs := args[2:]
	var total int64
	countWhere := ""
	if params.Sector != "" {
		countWhere = "WHERE sector = $1"
	}
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM incidences `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ApplyChanges commits one confirmed change-set in a single transaction. For
// existing records the row is locked and its updated_at compared against the
// timestamp captured at staging time; a moved timestamp means someone else
// committed in between and nothing is written. Every commit also writes an
// audit row with the JSON patch between the old and new field sets.
func (r *IncidenceRepository) ApplyChanges(ctx context.Context, params incidence.ApplyParams) (incidence.Incidence, error) {
	var result incidence.Incidence
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		var (
			oldFields map[string]any
			newFields map[string]any
		)

		if params.IncidenceID == 0 {
			oldFields = map[string]any{}
			newFields = mergeFields(nil, params.Changes)
			row := tx.QueryRow(txCtx, `
				INSERT INTO incidences (sector, schema_id, fields)
				VALUES ($1, $2, $3)
				RETURNING id, sector, schema_id, fields, created_at, updated_at
			`, string(params.Sector), params.SchemaID, newFields)
			result, err = scanIncidence(row)
			if err != nil {
				return err
			}
		} else {
			var updatedAt time.Time
			err := tx.QueryRow(txCtx, `
				SELECT fields, updated_at
				FROM incidences
				WHERE id = $1
				FOR UPDATE
			`, params.IncidenceID).Scan(&oldFields, &updatedAt)
			if errors.Is(err, pgx.ErrNoRows) {
				return incidence.ErrNotFound
			}
			if err != nil {
				return err
			}
			if updatedAt.After(params.BaseUpdatedAt) {
				return &incidence.ConcurrentModificationError{
					IncidenceID: params.IncidenceID,
					StagedAt:    params.BaseUpdatedAt,
					ModifiedAt:  updatedAt,
				}
			}

			newFields = mergeFields(oldFields, params.Changes)
			row := tx.QueryRow(txCtx, `
				UPDATE incidences
				SET fields = $1, updated_at = now()
				WHERE id = $2
				RETURNING id, sector, schema_id, fields, created_at, updated_at
			`, newFields, params.IncidenceID)
			result, err = scanIncidence(row)
			if err != nil {
				return err
			}
		}

		patch, err := fieldPatch(oldFields, newFields)
		if err != nil {
			return err
		}
		_, err = tx.Exec(txCtx, `
			INSERT INTO incidence_audit_logs (incidence_id, staged_id, patch)
			VALUES ($1, $2, $3)
		`, result.ID(), params.StagedID, patch)
		return err
	})
	if err != nil {
		return incidence.Incidence{}, err
	}
	return result, nil
}

func mergeFields(current map[string]any, changes map[string]any) map[string]any {
	out := make(map[string]any, len(current)+len(changes))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range changes {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func fieldPatch(oldFields, newFields map[string]any) ([]byte, error) {
	patch, err := jsondiff.Compare(oldFields, newFields)
	if err != nil {
		return nil, errors.Wrap(err, "compute field patch")
	}
	buf, err := json.Marshal(patch)
	if err != nil {
		return nil, errors.Wrap(err, "marshal field patch")
	}
	return buf, nil
}

func scanIncidence(row pgx.Row) (incidence.Incidence, error) {
	var (
		id        int64
		sector    string
		schemaID  string
		fields    map[string]any
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&id, &sector, &schemaID, &fields, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return incidence.Incidence{}, incidence.ErrNotFound
	}
	if err != nil {
		return incidence.Incidence{}, err
	}
	return incidence.Hydrate(id, schemadef.Sector(sector), schemaID, fields, createdAt, updatedAt), nil
}
