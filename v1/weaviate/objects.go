package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/weaviate/weaviate/entities/models"
)

// ListObjects fetches one page via GET /v1/objects.
func (c *Client) ListObjects(ctx context.Context, p ListParams) (*ObjectList, error) {
	if p.Class == "" {
		return nil, fmt.Errorf("class name cannot be empty")
	}
	if p.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	getter := c.client.Data().ObjectsGetter().
		WithClassName(p.Class).
		WithLimit(p.Limit)
	if p.IncludeVector {
		getter = getter.WithVector()
	}
	if p.After != "" {
		getter = getter.WithAfter(p.After)
	} else {
		getter = getter.WithOffset(p.Offset)
	}

	objs, err := getter.Do(ctx)
	if err != nil {
		return nil, apiError(http.MethodGet, "/v1/objects", err)
	}

	list := ObjectList{Objects: []*Object{}}
	if err := convert(objs, &list.Objects); err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to decode objects of %s: %w", p.Class, err)
	}
	list.TotalResults = len(list.Objects)
	return &list, nil
}

// CreateObject stores a single object via POST /v1/objects.
func (c *Client) CreateObject(ctx context.Context, obj *Object) error {
	if obj == nil || obj.Class == "" {
		return fmt.Errorf("object class cannot be empty")
	}

	creator := c.client.Data().Creator().
		WithClassName(obj.Class).
		WithProperties(obj.Properties)
	if obj.ID != "" {
		creator = creator.WithID(obj.ID)
	}
	if len(obj.Vector) > 0 {
		creator = creator.WithVector(obj.Vector)
	}
	if len(obj.Vectors) > 0 {
		var vectors models.Vectors
		if err := convert(obj.Vectors, &vectors); err != nil {
			return fmt.Errorf("[Weaviate] failed to encode vectors of %s: %w", obj.ID, err)
		}
		creator = creator.WithVectors(vectors)
	}

	if _, err := creator.Do(ctx); err != nil {
		return apiError(http.MethodPost, "/v1/objects", err)
	}
	return nil
}

// BatchCreateObjects stores objects via POST /v1/batch/objects. The request
// itself only fails on transport or status errors; per-object failures are
// reported in the returned results, in request order.
func (c *Client) BatchCreateObjects(ctx context.Context, objs []*Object) ([]BatchResult, error) {
	if len(objs) == 0 {
		return nil, nil
	}

	var batch []*models.Object
	if err := convert(objs, &batch); err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to encode batch: %w", err)
	}
	resp, err := c.client.Batch().ObjectsBatcher().WithObjects(batch...).Do(ctx)
	if err != nil {
		return nil, apiError(http.MethodPost, "/v1/batch/objects", err)
	}

	var items []batchResponseItem
	if err := convert(resp, &items); err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to decode batch response: %w", err)
	}

	results := make([]BatchResult, len(objs))
	for i, obj := range objs {
		results[i].ID = obj.ID
	}
	for i, item := range items {
		if i >= len(results) {
			break
		}
		if item.ID != "" {
			results[i].ID = item.ID
		}
		if item.Result.Errors == nil {
			continue
		}
		for _, e := range item.Result.Errors.Error {
			results[i].Errors = append(results[i].Errors, e.Message)
		}
	}
	if len(items) < len(objs) {
		for i := len(items); i < len(objs); i++ {
			results[i].Errors = []string{"no result returned for object"}
		}
	}
	return results, nil
}

// BatchError joins the messages of a failed batch result.
func BatchError(r BatchResult) string {
	return strings.Join(r.Errors, "; ")
}
