package api

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SettingsHandler handles the operational-settings API actions.
type SettingsHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewSettingsHandler(repos *Repos, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{repos: repos, logger: logger}
}

// Handle routes settings API requests.
// POST /api/settings
func (h *SettingsHandler) Handle(c echo.Context) error {
	action, body, err := parseBodyAction(c)
	if err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch action {
	case "settings":
		return h.getSettings(c)
	case "settings_update":
		return h.updateSettings(c, body)
	default:
		return errorResponse(c, "Unknown action: "+action)
	}
}

func (h *SettingsHandler) getSettings(c echo.Context) error {
	setting, err := h.repos.Setting.Get()
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		return errorResponse(c, "Failed to retrieve settings")
	}
	return successResponse(c, "Successful", setting)
}

func (h *SettingsHandler) updateSettings(c echo.Context, body map[string]interface{}) error {
	updates := make(map[string]interface{})

	if hasField(body, "user_agent") {
		updates["user_agent"] = getStringField(body, "user_agent")
	}
	if hasField(body, "request_timeout_ms") {
		updates["request_timeout_ms"] = getIntField(body, "request_timeout_ms", 30000)
	}
	if hasField(body, "wait_time_ms") {
		updates["wait_time_ms"] = getIntField(body, "wait_time_ms", 2000)
	}
	if hasField(body, "use_proxy") {
		updates["use_proxy"] = getBoolField(body, "use_proxy", false)
	}
	if hasField(body, "proxy_list") {
		raw, err := json.Marshal(body["proxy_list"])
		if err != nil {
			return errorResponse(c, "proxy_list must be a list of proxy URLs")
		}
		updates["proxy_list"] = string(raw)
	}
	if hasField(body, "max_concurrent_jobs") {
		updates["max_concurrent_jobs"] = getIntField(body, "max_concurrent_jobs", 3)
	}
	if hasField(body, "data_retention_days") {
		updates["data_retention_days"] = getIntField(body, "data_retention_days", 90)
	}

	if len(updates) == 0 {
		return errorResponse(c, "No settings fields provided")
	}

	if err := h.repos.Setting.Update(updates); err != nil {
		h.logger.Error("Failed to update settings", zap.Error(err))
		return errorResponse(c, "Failed to update settings")
	}

	setting, err := h.repos.Setting.Get()
	if err != nil {
		return successResponse(c, "Settings updated", nil)
	}
	return successResponse(c, "Settings updated", setting)
}
