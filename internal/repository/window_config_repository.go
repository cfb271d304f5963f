package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-presensi-api/internal/models"
)

// WindowConfigRepository persists per-family attendance window settings. The
// siswa and guru_staf families hold one row each; the keamanan family holds
// one row per shift name.
type WindowConfigRepository struct {
	db *sqlx.DB
}

// NewWindowConfigRepository constructs the repository.
func NewWindowConfigRepository(db *sqlx.DB) *WindowConfigRepository {
	return &WindowConfigRepository{db: db}
}

const windowConfigColumns = `id, scope, nama_shift, jam_masuk_mulai, jam_masuk_selesai,
	jam_terlambat_selesai, jam_pulang_mulai, jam_pulang_selesai, hari_libur_rutin`

// GetByScope fetches the single config of a non-shift family.
func (r *WindowConfigRepository) GetByScope(ctx context.Context, scope models.ConfigScope) (*models.WindowConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM window_configs WHERE scope = $1 AND nama_shift = ''`, windowConfigColumns)
	var cfg models.WindowConfig
	if err := r.db.GetContext(ctx, &cfg, query, scope); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetByShift fetches the config of one security shift.
func (r *WindowConfigRepository) GetByShift(ctx context.Context, shiftName string) (*models.WindowConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM window_configs WHERE scope = $1 AND nama_shift = $2`, windowConfigColumns)
	var cfg models.WindowConfig
	if err := r.db.GetContext(ctx, &cfg, query, models.ScopeSecurity, shiftName); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List returns every config row, shift configs ordered by name.
func (r *WindowConfigRepository) List(ctx context.Context) ([]models.WindowConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM window_configs ORDER BY scope ASC, nama_shift ASC`, windowConfigColumns)
	var configs []models.WindowConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list window configs: %w", err)
	}
	return configs, nil
}

// ListShiftNames returns the configured security shift names.
func (r *WindowConfigRepository) ListShiftNames(ctx context.Context) ([]string, error) {
	var names []string
	query := `SELECT nama_shift FROM window_configs WHERE scope = $1 AND nama_shift <> '' ORDER BY nama_shift ASC`
	if err := r.db.SelectContext(ctx, &names, query, models.ScopeSecurity); err != nil {
		return nil, fmt.Errorf("list shift names: %w", err)
	}
	return names, nil
}

// Upsert writes a config row keyed by (scope, shift name) and returns its id.
func (r *WindowConfigRepository) Upsert(ctx context.Context, cfg *models.WindowConfig) error {
	query := `
		INSERT INTO window_configs (scope, nama_shift, jam_masuk_mulai, jam_masuk_selesai,
			jam_terlambat_selesai, jam_pulang_mulai, jam_pulang_selesai, hari_libur_rutin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (scope, nama_shift) DO UPDATE SET
			jam_masuk_mulai = EXCLUDED.jam_masuk_mulai,
			jam_masuk_selesai = EXCLUDED.jam_masuk_selesai,
			jam_terlambat_selesai = EXCLUDED.jam_terlambat_selesai,
			jam_pulang_mulai = EXCLUDED.jam_pulang_mulai,
			jam_pulang_selesai = EXCLUDED.jam_pulang_selesai,
			hari_libur_rutin = EXCLUDED.hari_libur_rutin
		RETURNING id`
	if err := r.db.GetContext(ctx, &cfg.ID, query,
		cfg.Scope, cfg.ShiftName, cfg.EntryStart, cfg.EntryEnd,
		cfg.LateCutoff, cfg.ExitStart, cfg.ExitEnd, cfg.RoutineHolidays,
	); err != nil {
		return fmt.Errorf("upsert window config: %w", err)
	}
	return nil
}

// DeleteShift removes one security shift config.
func (r *WindowConfigRepository) DeleteShift(ctx context.Context, shiftName string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM window_configs WHERE scope = $1 AND nama_shift = $2`,
		models.ScopeSecurity, shiftName)
	if err != nil {
		return fmt.Errorf("delete shift config: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shift config: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("shift %q not found", shiftName)
	}
	return nil
}
