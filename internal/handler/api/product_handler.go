package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductHandler handles product API actions for the admin back office.
// Products are written by the job executor; this surface reads and prunes.
type ProductHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewProductHandler(repos *Repos, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{repos: repos, logger: logger}
}

// Handle routes product API requests.
// POST /api/products
func (h *ProductHandler) Handle(c echo.Context) error {
	action, body, err := parseBodyAction(c)
	if err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch action {
	case "products":
		return h.listProducts(c, body)
	case "product":
		return h.getProduct(c, body)
	case "product_delete":
		return h.deleteProduct(c, body)
	default:
		return errorResponse(c, "Unknown action: "+action)
	}
}

func (h *ProductHandler) listProducts(c echo.Context, body map[string]interface{}) error {
	limit := getIntField(body, "limit", 50)
	page := getIntField(body, "page", 1)
	q := getStringField(body, "q")

	products, total, err := h.repos.Product.FindAll(limit, page, q)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		return errorResponse(c, "Failed to retrieve products")
	}

	return successResponse(c, "Successful", paginatedResponse("products", products, total, page, limit))
}

func (h *ProductHandler) getProduct(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}

	product, err := h.repos.Product.FindByID(id)
	if err != nil {
		return errorResponse(c, "Product not found")
	}
	return successResponse(c, "Successful", product)
}

func (h *ProductHandler) deleteProduct(c echo.Context, body map[string]interface{}) error {
	id := getIntField(body, "id", 0)
	if id == 0 {
		return errorResponse(c, "id is required")
	}

	if err := h.repos.Product.Delete(id); err != nil {
		h.logger.Error("Failed to delete product", zap.Int("id", id), zap.Error(err))
		return errorResponse(c, "Failed to delete product")
	}
	return successResponse(c, "Product deleted", nil)
}
