// AngelaMos | 2026
// dto.go

package product

type CreateProductRequest struct {
	Name        string `json:"name"        validate:"required,min=2,max=200"`
	Slug        string `json:"slug"        validate:"required,min=2,max=200,lowercase"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  int64  `json:"price_cents" validate:"min=0"`
	Stock       int    `json:"stock"       validate:"min=0"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=200"`
	Slug        *string `json:"slug"        validate:"omitempty,min=2,max=200,lowercase"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,min=0"`
	Stock       *int    `json:"stock"       validate:"omitempty,min=0"`
}

type ListProductsParams struct {
	Page     int
	PageSize int
	Search   string
}
