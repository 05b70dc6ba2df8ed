package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coachbar/catalog-api/internal/application"
	"github.com/coachbar/catalog-api/internal/domain/repository"
	"github.com/coachbar/catalog-api/internal/interface/middleware"
	"github.com/coachbar/catalog-api/pkg/imagestore"
	"github.com/coachbar/catalog-api/pkg/response"
	"github.com/coachbar/catalog-api/pkg/validation"
)

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type createProductRequest struct {
	Name        string `form:"name" binding:"required"`
	SKU         string `form:"sku" binding:"required,min=3"`
	Description string `form:"description"`
	Category    string `form:"category" binding:"required"`
	AssignedTo  string `form:"assignedTo"` // JSON-encoded array of user ids
}

type updateProductRequest struct {
	Name        string `form:"name"`
	SKU         string `form:"sku" binding:"omitempty,min=3"`
	Description string `form:"description"`
	Category    string `form:"category"`
	AssignedTo  string `form:"assignedTo"`
}

type assignProductRequest struct {
	ProductID  string   `json:"productId" binding:"required"`
	UserID     string   `json:"userId" binding:"required"`
	AssignedTo []string `json:"assignedTo" binding:"required"`
}

// parseAssignedTo decodes the multipart assignedTo field, which arrives as a
// JSON array inside the form.
func parseAssignedTo(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// logoReader opens the optional multipart logo file. A missing file yields a
// nil reader, not an error.
func logoReader(c *gin.Context) (io.ReadCloser, error) {
	file, err := c.FormFile("logo")
	if err != nil {
		return nil, nil
	}
	return file.Open()
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	assigned, err := parseAssignedTo(req.AssignedTo)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"assignedTo": "must be a JSON array of user ids"})
		return
	}
	logo, err := logoReader(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Image is required", nil)
		return
	}
	if logo != nil {
		defer func() { _ = logo.Close() }()
	}

	var reader io.Reader
	if logo != nil {
		reader = logo
	}
	p, err := h.Svc.Create(c.Request.Context(), application.CreateProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Category:    req.Category,
		AssignedTo:  assigned,
	}, middleware.Identity(c), middleware.Role(c), reader)
	if err != nil {
		switch {
		case errors.Is(err, imagestore.ErrImageRequired):
			response.Error[any](c, http.StatusBadRequest, "Image is required", nil)
		case errors.Is(err, application.ErrSKUTaken):
			response.Error[any](c, http.StatusConflict, "SKU already exists", nil)
		default:
			h.Logger.WithError(err).Error("create product failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to create product", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, p, "Product created successfully", nil)
}

func (h *ProductHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	q := repository.ProductQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Source:   c.Query("source"),
		Page:     page,
		Limit:    limit,
		Sort:     c.DefaultQuery("sort", "name"),
		Order:    c.DefaultQuery("order", "asc"),
	}
	products, total, err := h.Svc.List(c.Request.Context(), q, middleware.Identity(c), middleware.Role(c))
	if err != nil {
		h.Logger.WithError(err).Error("list products failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list products", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"products": products, "total": total}, "products", nil)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	p, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"), middleware.Identity(c), middleware.Role(c))
	if err != nil {
		if errors.Is(err, application.ErrProductNotFound) {
			response.Error[any](c, http.StatusNotFound, "Product not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get product failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to get product", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "product", nil)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	assigned, err := parseAssignedTo(req.AssignedTo)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"assignedTo": "must be a JSON array of user ids"})
		return
	}
	logo, err := logoReader(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image upload", nil)
		return
	}
	if logo != nil {
		defer func() { _ = logo.Close() }()
	}

	var reader io.Reader
	if logo != nil {
		reader = logo
	}
	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), application.UpdateProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Category:    req.Category,
		AssignedTo:  assigned,
	}, middleware.Identity(c), reader)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrProductNotFound):
			response.Error[any](c, http.StatusNotFound, "Product not found", nil)
		case errors.Is(err, application.ErrSKUTaken):
			response.Error[any](c, http.StatusConflict, "SKU already exists", nil)
		case errors.Is(err, imagestore.ErrImageRequired):
			response.Error[any](c, http.StatusBadRequest, "Image is required", nil)
		default:
			h.Logger.WithError(err).Error("update product failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to update product", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, p, "Product updated successfully", nil)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		if errors.Is(err, application.ErrProductNotFound) {
			response.Error[any](c, http.StatusNotFound, "Product not found", nil)
			return
		}
		h.Logger.WithError(err).Error("delete product failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete product", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Product deleted successfully", nil)
}

func (h *ProductHandler) Assign(c *gin.Context) {
	var req assignProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.Assign(c.Request.Context(), req.ProductID, req.UserID, req.AssignedTo, middleware.Identity(c))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrProductNotFound):
			response.Error[any](c, http.StatusNotFound, "Product not found", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
		default:
			h.Logger.WithError(err).Error("assign product failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to assign product", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, p, "Product assigned successfully", nil)
}

func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.Svc.Categories(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list categories failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list categories", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories}, "categories", nil)
}

func (h *ProductHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	hits, err := h.Svc.Search(c.Request.Context(), c.Query("q"), limit, middleware.Identity(c), middleware.Role(c))
	if err != nil {
		h.Logger.WithError(err).Error("search products failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": hits}, "search results", nil)
}
