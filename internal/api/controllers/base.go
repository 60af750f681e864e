package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dooh/internal/services"
)

// ScopeFunc returns the column filters that confine a request to the rows
// its caller may see, e.g. {"recipient_id": userID}.
type ScopeFunc func(ctx echo.Context) map[string]interface{}

// BaseController provides generic read operations for any model
type BaseController[T any] struct {
	service    services.BaseService[T]
	scope      ScopeFunc
	filterable map[string]bool
	sortable   map[string]bool
}

// NewBaseController creates a new base controller. Only the listed columns
// may be used as query filters or sort keys.
func NewBaseController[T any](service services.BaseService[T], scope ScopeFunc, filterable, sortable []string) *BaseController[T] {
	return &BaseController[T]{
		service:    service,
		scope:      scope,
		filterable: toSet(filterable),
		sortable:   toSet(sortable),
	}
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// pathID reads :id, which must be a UUID.
func pathID(ctx echo.Context) (string, error) {
	id := ctx.Param("id")
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}
	return id, nil
}

func (c *BaseController[T]) scoped(ctx echo.Context) map[string]interface{} {
	filters := make(map[string]interface{})
	if c.scope != nil {
		for k, v := range c.scope(ctx) {
			filters[k] = v
		}
	}
	return filters
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	entity, err := c.service.Get(ctx.Request().Context(), id, c.scoped(ctx))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "entity not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, entity)
}

// List handles retrieval of multiple entities with pagination and filtering
func (c *BaseController[T]) List(ctx echo.Context) error {
	// Parse pagination parameters
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	// Scope filters always win over query parameters
	filters := make(map[string]interface{})
	for key, values := range ctx.QueryParams() {
		if c.filterable[key] && len(values) > 0 {
			filters[key] = values[0]
		}
	}
	for k, v := range c.scoped(ctx) {
		filters[k] = v
	}

	sort := ctx.QueryParam("sort")
	if !c.sortable[sort] {
		sort = "created_at"
	}

	entities, total, err := c.service.List(ctx.Request().Context(), page, limit, filters, sort, ctx.QueryParam("order"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"data":  entities,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Patch writes fixed column values to one scoped entity and returns it.
func (c *BaseController[T]) Patch(values map[string]interface{}) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathID(ctx)
		if err != nil {
			return err
		}
		filters := c.scoped(ctx)
		if err := c.service.Update(ctx.Request().Context(), id, filters, values); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "entity not found")
			}
			return err
		}
		return c.Get(ctx)
	}
}
