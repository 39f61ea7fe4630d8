package handler

import (
	"buybizz/internal/dto"

	"github.com/labstack/echo/v4"
)

func pageParams(b *echo.ValueBinder, p *dto.PageQuery) *echo.ValueBinder {
	return b.Int("page", &p.Page).Int("limit", &p.Limit)
}

func productFilter(c echo.Context) (dto.ProductFilter, error) {
	var f dto.ProductFilter
	err := pageParams(echo.QueryParamsBinder(c), &f.PageQuery).
		String("category", &f.Category).
		String("status", &f.Status).
		String("vendorId", &f.VendorID).
		String("search", &f.Search).
		BindError()
	return f, err
}
