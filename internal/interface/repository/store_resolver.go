package repository

import (
	"context"
	"os"

	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
)

// Backend names reported by ResolveStore.
const (
	BackendExcel  = "excel"
	BackendGoogle = "google"
)

// StoreConfig is the configuration surface the backend decision needs.
type StoreConfig struct {
	ExcelPath      string
	SheetName      string
	SheetID        string
	CredentialJSON string
}

// ResolveStore decides the record store backend exactly once, at
// startup, and returns it for injection into all consumers. The local
// bookings file takes priority when present; otherwise the remote
// sheet is used when configured; otherwise ErrNoBackend. The decision
// is fixed for the process lifetime.
func ResolveStore(ctx context.Context, cfg StoreConfig, log logger.Logger) (repository.RecordStore, string, error) {
	if _, err := os.Stat(cfg.ExcelPath); err == nil {
		log.Info("Using local bookings file", "path", cfg.ExcelPath, "sheet", cfg.SheetName)
		return NewXLSXStore(cfg.ExcelPath, cfg.SheetName, log), BackendExcel, nil
	}

	if cfg.SheetID != "" && cfg.CredentialJSON != "" {
		store, err := NewSheetsStore(ctx, cfg.CredentialJSON, cfg.SheetID, cfg.SheetName, log)
		if err != nil {
			return nil, "", err
		}
		log.Info("Using remote bookings sheet", "sheetId", cfg.SheetID, "sheet", cfg.SheetName)
		return store, BackendGoogle, nil
	}

	return nil, "", repository.ErrNoBackend
}
