package request

// CreateProductRequest is the body of POST /products
type CreateProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Slug         string  `json:"slug" binding:"required"`
	Description  *string `json:"description"`
	SellingPrice float64 `json:"selling_price" binding:"gte=0"`
	PriceJSON    *string `json:"price_json"`
}
