// Package app wires configuration into the running service: encryption
// engine, document store, audit trail, and backup service. The CLI is a thin
// shell over this package.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fieldseal/fieldseal"
	"github.com/fieldseal/fieldseal/audit"
	"github.com/fieldseal/fieldseal/backup"
	"github.com/fieldseal/fieldseal/config"
	"github.com/fieldseal/fieldseal/docstore"
)

// auditCollection is where persisted audit events go. It is declared in
// Collections with no sensitive fields.
const auditCollection = "audit"

// App holds validated configuration and builds the service components on
// demand. Stores are opened per operation and closed when it completes.
type App struct {
	cfg config.Config
	log *slog.Logger
}

// New creates an App. A nil logger falls back to slog.Default().
func New(cfg config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{cfg: cfg, log: log}
}

// newEngine builds an engine for the given secret with the dataset's
// normalizers. Phone numbers compare digits-only so formatting differences
// don't break lookups.
func (a *App) newEngine(secret string) (*fieldseal.Engine, error) {
	return fieldseal.New(
		fieldseal.WithSecret(secret),
		fieldseal.WithLogger(a.log),
		fieldseal.WithFieldNormalizer("phone", fieldseal.NormalizePhone),
	)
}

func (a *App) newBackend(ctx context.Context) (docstore.Backend, error) {
	switch a.cfg.Store {
	case config.StoreMongo:
		return docstore.NewMongoBackend(ctx, a.cfg.MongoURI, a.cfg.MongoDB)
	default:
		return docstore.NewSQLiteBackend(a.cfg.SQLitePath)
	}
}

// OpenStore connects the configured backend and returns a store with the
// audit trail attached. The caller owns the store and must close it.
func (a *App) OpenStore(ctx context.Context) (*docstore.Store, error) {
	engine, err := a.newEngine(a.cfg.Secret)
	if err != nil {
		return nil, err
	}

	backend, err := a.newBackend(ctx)
	if err != nil {
		return nil, err
	}

	// The store sink writes into the store's own audit collection; the
	// closure resolves the store pointer after construction.
	var store *docstore.Store
	sink := audit.Fanout(
		audit.NewLogSink(a.log),
		audit.NewStoreSink(func(ctx context.Context, record map[string]any) error {
			return store.InsertRaw(ctx, auditCollection, record)
		}),
	)

	store, err = docstore.New(engine, backend, Collections(),
		docstore.WithLogger(a.log),
		docstore.WithAuditSink(sink))
	if err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}

func (a *App) newTarget(ctx context.Context) (backup.Target, error) {
	switch a.cfg.BackupTarget {
	case config.TargetS3:
		return backup.NewS3Target(ctx, backup.S3Options{
			Bucket:          a.cfg.S3Bucket,
			Prefix:          a.cfg.S3Prefix,
			Region:          a.cfg.S3Region,
			AccessKeyID:     a.cfg.S3AccessKeyID,
			SecretAccessKey: a.cfg.S3SecretAccessKey,
		})
	default:
		return backup.NewFSTarget(a.cfg.BackupDir)
	}
}

// newBackupService builds the backup service over an open store. Archive
// encryption is enabled when age key material is configured.
func (a *App) newBackupService(ctx context.Context, store *docstore.Store) (*backup.Service, error) {
	target, err := a.newTarget(ctx)
	if err != nil {
		return nil, err
	}

	opts := []backup.ServiceOption{
		backup.WithLogger(a.log),
		backup.WithAuditSink(audit.NewLogSink(a.log)),
	}
	if a.cfg.AgeRecipientPath != "" || a.cfg.AgeIdentityPath != "" {
		enc, err := backup.NewAgeEncryptor(a.cfg.AgeRecipientPath, a.cfg.AgeIdentityPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, backup.WithEncryptor(enc))
	}
	return backup.NewService(store, target, opts...), nil
}

// Backup snapshots every collection to the configured target and returns the
// archive name.
func (a *App) Backup(ctx context.Context) (string, error) {
	store, err := a.OpenStore(ctx)
	if err != nil {
		return "", err
	}
	defer store.Close()

	svc, err := a.newBackupService(ctx, store)
	if err != nil {
		return "", err
	}
	return svc.Backup(ctx)
}

// Restore replaces the dataset with the named archive's contents.
func (a *App) Restore(ctx context.Context, name string) error {
	store, err := a.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := a.newBackupService(ctx, store)
	if err != nil {
		return err
	}
	return svc.Restore(ctx, name)
}

// ListBackups returns the archive names on the configured target.
func (a *App) ListBackups(ctx context.Context) ([]string, error) {
	target, err := a.newTarget(ctx)
	if err != nil {
		return nil, err
	}
	return target.List(ctx)
}

// Rotate re-encrypts every sensitive field under newSecret and recomputes the
// blind indexes. It works on wire-form records so nothing sensitive is logged
// or persisted in the clear along the way. Returns the number of records
// rewritten.
//
// Any envelope the current secret cannot open aborts the whole rotation before
// the first write; after a successful rotation the service must be restarted
// with the new secret.
func (a *App) Rotate(ctx context.Context, newSecret string) (int, error) {
	oldEngine, err := a.newEngine(a.cfg.Secret)
	if err != nil {
		return 0, err
	}
	newEngine, err := a.newEngine(newSecret)
	if err != nil {
		return 0, fmt.Errorf("new secret: %w", err)
	}
	rotator := fieldseal.NewRotator(oldEngine, newEngine)

	store, err := a.OpenStore(ctx)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	// Rewrite everything in memory first so a bad envelope aborts with the
	// stored data untouched.
	rotated := make(map[string][]fieldseal.Record)
	var count int
	for _, col := range store.Collections() {
		if len(col.Sensitive) == 0 {
			continue
		}
		records, err := store.Export(ctx, col.Name)
		if err != nil {
			return 0, err
		}
		for _, record := range records {
			if err := rotator.RotateRecord(record, col.Sensitive, col.Indexed); err != nil {
				id, _ := record["id"].(string)
				return 0, fmt.Errorf("rotating %s/%s: %w", col.Name, id, err)
			}
		}
		rotated[col.Name] = records
		count += len(records)
	}

	for name, records := range rotated {
		if err := store.ReplaceAll(ctx, name, records); err != nil {
			return 0, fmt.Errorf("writing rotated %s: %w", name, err)
		}
	}

	ev := audit.New("cli", audit.ActionRotate)
	ev.Detail = map[string]string{"records": fmt.Sprint(count)}
	if err := audit.NewLogSink(a.log).Emit(ctx, ev); err != nil {
		a.log.ErrorContext(ctx, "audit emit failed", "error", err)
	}

	a.log.InfoContext(ctx, "secret rotated", "records", count)
	return count, nil
}

// Verify checks that every stored envelope opens under the current secret.
// It returns the number of envelopes checked and how many failed.
func (a *App) Verify(ctx context.Context) (checked, failed int, err error) {
	engine, err := a.newEngine(a.cfg.Secret)
	if err != nil {
		return 0, 0, err
	}

	store, err := a.OpenStore(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer store.Close()

	for _, col := range store.Collections() {
		records, err := store.Export(ctx, col.Name)
		if err != nil {
			return checked, failed, err
		}
		for _, record := range records {
			for _, field := range col.Sensitive {
				stored, ok := record[field].(string)
				if !ok || !fieldseal.IsEncrypted(stored) {
					continue
				}
				checked++
				if _, err := engine.DecryptStrict(stored); err != nil {
					failed++
					id, _ := record["id"].(string)
					a.log.WarnContext(ctx, "envelope failed verification",
						"collection", col.Name, "id", id, "field", field)
				}
			}
		}
	}
	return checked, failed, nil
}
