package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// SeedRestaurant inserts a restaurant with a unique slug derived from name
func SeedRestaurant(t *testing.T, repo repository.RestaurantRepository, name, cuisineType string) *models.Restaurant {
	t.Helper()

	id := uuid.NewString()
	r := &models.Restaurant{
		ID:            id,
		Slug:          name + "-" + id[:8],
		Name:          name,
		CuisineType:   cuisineType,
		DefaultLocale: "fr",
		Locales:       []string{"fr", "en"},
	}
	if err := repo.CreateRestaurant(context.Background(), r); err != nil {
		t.Fatalf("failed to seed restaurant: %v", err)
	}
	return r
}

// SeedProduct inserts an available product priced from a decimal string
func SeedProduct(t *testing.T, repo repository.ProductRepository, restaurantID, name string, typ customizer.ProductType, price string) *models.Product {
	t.Helper()

	p := &models.Product{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Name:         name,
		Type:         typ,
		Price:        decimal.RequireFromString(price),
		Available:    true,
	}
	if err := repo.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

// GaletteConfigYAML is a small snack configuration shared by service and
// handler tests: Galette 6.00, three free sauces, 0.50 per extra sauce.
const GaletteConfigYAML = `
base_price: "5.00"
free_sauces_sandwich: 3
free_sauces_frites: 0
extra_sauce_price: "0.50"
enable_boisson_upsell: true
steps:
  - id: base
    title: Base
    required: true
    options:
      - id: galette
        name: Galette
        price_modifier: "6.00"
      - id: assiette
        name: Assiette
        price_modifier: "8.00"
        max_viandes: 3
        allow_multi_meat: true
  - id: viande
    title: Viande
    required: true
    options:
      - id: poulet
        name: Poulet
        name_translations:
          en: Chicken
      - id: boeuf
        name: Boeuf
      - id: merguez
        name: Merguez
        price_modifier: "0.50"
  - id: garniture
    title: Garniture
    options:
      - id: salade
        name: Salade
      - id: tomate
        name: Tomate
        price_modifier: "0.30"
  - id: sauces
    title: Sauces
    max_selections: 4
    options:
      - id: blanche
        name: Blanche
      - id: algerienne
        name: Algerienne
      - id: samourai
        name: Samourai
      - id: harissa
        name: Harissa
  - id: accompagnement
    title: Accompagnement
    options:
      - id: frites
        name: Frites
        price_modifier: "2.50"
        has_sub_sauce: true
      - id: salade_verte
        name: Salade verte
        price_modifier: "1.50"
  - id: supplements
    title: Suppléments
    options:
      - id: fromage
        name: Fromage
        price_modifier: "0.50"
        max_qty: 2
  - id: boisson
    title: Boisson
    options:
      - id: coca
        name: Coca
        price_modifier: "1.50"
  - id: recap
    title: Récapitulatif
`

// GaletteConfig parses GaletteConfigYAML
func GaletteConfig(t *testing.T) *customizer.Configuration {
	t.Helper()

	cfg, err := customizer.ParseYAML([]byte(GaletteConfigYAML))
	if err != nil {
		t.Fatalf("failed to parse galette config: %v", err)
	}
	return cfg
}
