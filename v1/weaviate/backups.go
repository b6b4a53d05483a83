package weaviate

import (
	"context"
	"fmt"
	"net/http"
)

// StartRestore initiates a restore via POST /v1/backups/{backend}/{id}/restore.
// The call returns once the server has accepted the request; use RestoreStatus
// to follow progress.
func (c *Client) StartRestore(ctx context.Context, backend, backupID string, req RestoreRequest) (*RestoreStatus, error) {
	path, err := restorePath(backend, backupID)
	if err != nil {
		return nil, err
	}

	restorer := c.client.Backup().Restorer().
		WithBackend(backend).
		WithBackupID(backupID).
		WithWaitForCompletion(false)
	if len(req.Include) > 0 {
		restorer = restorer.WithIncludeClassNames(req.Include...)
	}
	if len(req.Exclude) > 0 {
		restorer = restorer.WithExcludeClassNames(req.Exclude...)
	}

	resp, err := restorer.Do(ctx)
	if err != nil {
		return nil, apiError(http.MethodPost, path, err)
	}

	var status RestoreStatus
	if err := convert(resp, &status); err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to decode restore response: %w", err)
	}

	c.logger.Info("Restore initiated", nil, map[string]interface{}{
		"backend":   backend,
		"backup_id": backupID,
		"include":   req.Include,
		"status":    status.Status,
	})
	return &status, nil
}

// RestoreStatus reads GET /v1/backups/{backend}/{id}/restore.
func (c *Client) RestoreStatus(ctx context.Context, backend, backupID string) (*RestoreStatus, error) {
	path, err := restorePath(backend, backupID)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Backup().RestoreStatusGetter().
		WithBackend(backend).
		WithBackupID(backupID).
		Do(ctx)
	if err != nil {
		return nil, apiError(http.MethodGet, path, err)
	}

	var status RestoreStatus
	if err := convert(resp, &status); err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to decode restore status: %w", err)
	}
	return &status, nil
}

func restorePath(backend, backupID string) (string, error) {
	if backend == "" {
		return "", fmt.Errorf("backup backend cannot be empty")
	}
	if backupID == "" {
		return "", fmt.Errorf("backup id cannot be empty")
	}
	return fmt.Sprintf("/v1/backups/%s/%s/restore", backend, backupID), nil
}
