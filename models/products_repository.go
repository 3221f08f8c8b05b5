package models

import (
	"errors"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

type ProductFilters struct {
	Category      CategorySlug
	PriceLessThan *float64
	InStockOnly   bool
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetAllProducts() ([]Product, error) {
	var products []Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetFilteredProducts(offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.Model(&Product{})

	// Filter
	if filters.Category != "" && filters.Category != CategoryAll {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.PriceLessThan != nil {
		query = query.Where("price < ?", *filters.PriceLessThan)
	}
	if filters.InStockOnly {
		query = query.Where("qty > 0")
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetByID(id string) (*Product, error) {
	var product Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// SaveProduct inserts the product or overwrites the row with the same id.
func (r *ProductsRepository) SaveProduct(p *Product) error {
	return r.db.Save(p).Error
}

// GetAllCategories returns the fixed category set with a product count
// for each. Categories without products are still listed.
func (r *ProductsRepository) GetAllCategories() ([]Category, error) {
	var rows []struct {
		Category CategorySlug
		Count    int64
	}
	if err := r.db.Model(&Product{}).
		Select("category, count(*) AS count").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[CategorySlug]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}

	out := Categories()
	for i := range out {
		out[i].Products = counts[out[i].Slug]
	}
	return out, nil
}
