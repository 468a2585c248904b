package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/dukapay-api/internal/application/service"
	"github.com/sangkips/dukapay-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dukapay-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dukapay-api/pkg/apperror"
	"github.com/sangkips/dukapay-api/pkg/pagination"
)

// ProductHandler exposes the product catalog
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var paginationParams pagination.PaginationParams
	if err := c.ShouldBindQuery(&paginationParams); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}
	paginationParams.Validate()

	result, err := h.productService.ListProducts(c.Request.Context(), &paginationParams, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Get handles GET /products/:slug
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidationError("Invalid request body", err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		SellingPrice: req.SellingPrice,
		PriceJSON:    req.PriceJSON,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}
