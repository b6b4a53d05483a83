package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

var errRestorePending = errors.New("restore still in progress")

// RestoreBackup restores collection from backupID and waits for the restore
// to finish. The first poll happens one Restore.InitialInterval after the
// initiate call; later polls follow an exponential backoff bounded by
// Restore.MaxAttempts polls and the Restore.Timeout deadline.
//
// A target that already exists counts as restored, both when the initiate
// call is rejected for it and when the restore fails because of it.
func (o *Orchestrator) RestoreBackup(ctx context.Context, backupID, collection string) error {
	backend := o.cfg.BackupBackend
	fields := map[string]interface{}{
		"backup_id":  backupID,
		"backend":    backend,
		"collection": collection,
	}

	started, err := o.store.StartRestore(ctx, backend, backupID, weaviate.RestoreRequest{
		Include: []string{collection},
	})
	if err != nil {
		if weaviate.IsAlreadyExists(err) {
			o.logger.WarnWithContext(ctx, "Collection already exists, skipping restore", nil, fields)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RestoreFailedError{Reason: weaviate.ResponseBody(err), Err: err}
	}
	if done, err := o.restoreOutcome(ctx, started, fields); done {
		return err
	}

	deadline, cancel := context.WithTimeout(ctx, o.cfg.Restore.Timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = o.cfg.Restore.InitialInterval
	if o.cfg.Restore.MaxInterval > 0 {
		policy.MaxInterval = o.cfg.Restore.MaxInterval
	}
	policy.MaxElapsedTime = o.cfg.Restore.Timeout

	polls := 0
	if err := waitInterval(deadline, o.cfg.Restore.InitialInterval); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w after %d polls", ErrRestoreTimeout, polls)
	}
	poll := func() error {
		polls++
		status, err := o.store.RestoreStatus(deadline, backend, backupID)
		if err != nil {
			o.logger.WarnWithContext(ctx, "Restore status poll failed", err, fields)
			return err
		}
		o.metrics.RestorePolled(status.Status)
		o.logger.DebugWithContext(ctx, "Restore status", nil, fields, map[string]interface{}{
			"status": status.Status,
			"poll":   polls,
		})
		if done, err := o.restoreOutcome(ctx, status, fields); done {
			if err != nil {
				return backoff.Permanent(err)
			}
			return nil
		}
		return errRestorePending
	}

	attempts := uint64(o.cfg.Restore.MaxAttempts - 1)
	err = backoff.Retry(poll, backoff.WithContext(backoff.WithMaxRetries(policy, attempts), deadline))
	if err == nil {
		return nil
	}

	var failed *RestoreFailedError
	if errors.As(err, &failed) {
		return failed
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, errRestorePending) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %d polls", ErrRestoreTimeout, polls)
	}
	return fmt.Errorf("%w after %d polls: %w", ErrRestoreTimeout, polls, err)
}

func waitInterval(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// restoreOutcome reports whether status is terminal and, if so, its result.
func (o *Orchestrator) restoreOutcome(ctx context.Context, status *weaviate.RestoreStatus, fields map[string]interface{}) (bool, error) {
	switch status.Status {
	case weaviate.RestoreSuccess:
		o.logger.InfoWithContext(ctx, "Restore completed", nil, fields)
		return true, nil
	case weaviate.RestoreFailed:
		if weaviate.ContainsAlreadyExists(status.Error) {
			o.logger.WarnWithContext(ctx, "Restore reports collection already exists, using it", nil, fields)
			return true, nil
		}
		reason := status.Error
		if reason == "" {
			reason = "unknown error"
		}
		o.logger.ErrorWithContext(ctx, "Restore failed", nil, fields, map[string]interface{}{
			"reason": reason,
		})
		return true, &RestoreFailedError{Reason: reason}
	default:
		return false, nil
	}
}
