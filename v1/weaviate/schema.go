package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/weaviate/weaviate/entities/models"
)

// GetClass retrieves a class descriptor via GET /v1/schema/{class}.
func (c *Client) GetClass(ctx context.Context, name string) (*Class, error) {
	if name == "" {
		return nil, fmt.Errorf("class name cannot be empty")
	}

	got, err := c.client.Schema().ClassGetter().WithClassName(name).Do(ctx)
	if err != nil {
		return nil, apiError(http.MethodGet, "/v1/schema/"+name, err)
	}

	var class Class
	if err := convert(got, &class); err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to decode class %s: %w", name, err)
	}
	return &class, nil
}

// CreateClass submits a class descriptor via POST /v1/schema.
func (c *Client) CreateClass(ctx context.Context, class *Class) error {
	if class == nil || class.Class == "" {
		return fmt.Errorf("class name cannot be empty")
	}

	var desc models.Class
	if err := convert(class, &desc); err != nil {
		return fmt.Errorf("[Weaviate] failed to encode class %s: %w", class.Class, err)
	}
	if err := c.client.Schema().ClassCreator().WithClass(&desc).Do(ctx); err != nil {
		return apiError(http.MethodPost, "/v1/schema", err)
	}

	c.logger.Info("Created class", nil, map[string]interface{}{
		"class":         class.Class,
		"named_vectors": class.HasNamedVectors(),
	})
	return nil
}

// DeleteClass removes a class and all of its objects via DELETE /v1/schema/{class}.
func (c *Client) DeleteClass(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if err := c.client.Schema().ClassDeleter().WithClassName(name).Do(ctx); err != nil {
		return apiError(http.MethodDelete, "/v1/schema/"+name, err)
	}
	return nil
}

// ListClasses returns every class in the schema.
func (c *Client) ListClasses(ctx context.Context) ([]*Class, error) {
	dump, err := c.client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, apiError(http.MethodGet, "/v1/schema", err)
	}

	var schema Schema
	if err := convert(dump, &schema); err != nil {
		return nil, fmt.Errorf("[Weaviate] failed to decode schema: %w", err)
	}
	return schema.Classes, nil
}

// ClassesWithPrefix filters ListClasses by name prefix. An empty prefix
// returns every class.
func (c *Client) ClassesWithPrefix(ctx context.Context, prefix string) ([]*Class, error) {
	classes, err := c.ListClasses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*Class, 0, len(classes))
	for _, class := range classes {
		if strings.HasPrefix(class.Class, prefix) {
			out = append(out, class)
		}
	}
	return out, nil
}
