package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dealradar/internal/models"
	"dealradar/internal/repository"
)

// Repos bundles the repositories the admin API handlers use.
type Repos struct {
	Job     *repository.ScrapeJobRepository
	Product *repository.ProductRepository
	Setting *repository.SettingRepository
}

func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    nil,
	})
}

// parseBodyAction extracts the "actions" field from the request body. All
// admin API requests route on this field.
func parseBodyAction(c echo.Context) (string, map[string]interface{}, error) {
	body := make(map[string]interface{})
	if err := c.Bind(&body); err != nil {
		return "", nil, err
	}
	action, _ := body["actions"].(string)
	return action, body, nil
}

func getStringField(body map[string]interface{}, key string) string {
	if v, ok := body[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.0f", f)
		}
	}
	return ""
}

func getIntField(body map[string]interface{}, key string, defaultVal int) int {
	if v, ok := body[key]; ok {
		switch t := v.(type) {
		case float64:
			return int(t)
		case int:
			return t
		case string:
			if i, err := strconv.Atoi(t); err == nil {
				return i
			}
		}
	}
	return defaultVal
}

func getBoolField(body map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := body[key]; ok {
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b
			}
		case float64:
			return t != 0
		}
	}
	return defaultVal
}

func hasField(body map[string]interface{}, key string) bool {
	_, ok := body[key]
	return ok
}

func paginatedResponse(key string, data interface{}, total int64, page, limit int) map[string]interface{} {
	if limit <= 0 {
		limit = 50
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return map[string]interface{}{
		key: data,
		"pagination": map[string]interface{}{
			"total_record": total,
			"total_pages":  pages,
			"current_page": page,
			"per_page":     limit,
		},
	}
}
