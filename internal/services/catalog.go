package services

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/errors"
	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/repository"
	"github.com/galettery/galettery/pkg/backend"
)

// CatalogServiceRepository defines the repository methods needed by CatalogService
type CatalogServiceRepository interface {
	repository.RestaurantRepository
	repository.ProductRepository
	repository.ConfigRepository
}

// CatalogService manages restaurants, their products and their customization
// configurations
type CatalogService struct {
	log    logger.Logger
	repo   CatalogServiceRepository
	client backend.Client
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(log logger.Logger, repo CatalogServiceRepository, client backend.Client) *CatalogService {
	return &CatalogService{log: log, repo: repo, client: client}
}

// Restaurant represents a restaurant for create operations
type Restaurant struct {
	Name          string
	Slug          string
	CuisineType   string
	DefaultLocale string
	Locales       []string
}

// Product represents a product for create/update operations
type Product struct {
	Name             string
	NameTranslations map[string]string
	Description      string
	Category         string
	Type             customizer.ProductType
	Price            decimal.Decimal
	Available        bool
	DisplayOrder     int
}

// SyncResult contains the result of a backend sync
type SyncResult struct {
	Status             string `json:"status"`
	Message            string `json:"message,omitempty"`
	RestaurantsCreated int    `json:"restaurants_created"`
	RestaurantsUpdated int    `json:"restaurants_updated"`
	ProductsCreated    int    `json:"products_created"`
	ProductsUpdated    int    `json:"products_updated"`
	ProductsSkipped    int    `json:"products_skipped"`
	ConfigsSynced      int    `json:"configs_synced"`
	TemplatesSynced    int    `json:"templates_synced"`
}

var slugStrip = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases name, drops accents and joins words with dashes
func Slugify(name string) string {
	plain, _, err := transform.String(slugStrip, name)
	if err != nil {
		plain = name
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// ListRestaurants returns every restaurant
func (s *CatalogService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.repo.ListRestaurants(ctx)
}

// GetRestaurant retrieves a restaurant by id
func (s *CatalogService) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	r, err := s.repo.GetRestaurant(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("restaurant %s not found", id)
	}
	return r, err
}

// GetRestaurantBySlug retrieves a restaurant by its public slug
func (s *CatalogService) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	r, err := s.repo.GetRestaurantBySlug(ctx, slug)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("restaurant %s not found", slug)
	}
	return r, err
}

// CreateRestaurant creates a restaurant, deriving the slug from the name when empty
func (s *CatalogService) CreateRestaurant(ctx context.Context, in Restaurant) (*models.Restaurant, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.Validation("restaurant name is required")
	}
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Name)
	}
	if slug == "" {
		return nil, errors.Validation("restaurant slug is empty")
	}
	locale := in.DefaultLocale
	if locale == "" {
		locale = "fr"
	}
	r := &models.Restaurant{
		ID:            uuid.NewString(),
		Slug:          slug,
		Name:          strings.TrimSpace(in.Name),
		CuisineType:   in.CuisineType,
		DefaultLocale: locale,
		Locales:       in.Locales,
	}
	if err := s.repo.CreateRestaurant(ctx, r); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Conflictf("slug %q is already taken", slug)
		}
		return nil, err
	}
	s.log.Info("Restaurant created", "restaurant_id", r.ID, "slug", r.Slug)
	return r, nil
}

// ListProducts returns the catalog of a restaurant in display order
func (s *CatalogService) ListProducts(ctx context.Context, restaurantID string, onlyAvailable bool) ([]models.Product, error) {
	return s.repo.ListProducts(ctx, restaurantID, onlyAvailable)
}

// GetProduct retrieves a product by id
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("product %s not found", id)
	}
	return p, err
}

func validateProduct(in Product) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.Validation("product name is required")
	}
	if !in.Type.Valid() {
		return errors.Validationf("invalid product type %q", in.Type)
	}
	if in.Price.IsNegative() {
		return errors.Validation("price cannot be negative")
	}
	return nil
}

// CreateProduct adds a product to a restaurant's catalog
func (s *CatalogService) CreateProduct(ctx context.Context, restaurantID string, in Product) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	p := &models.Product{
		ID:               uuid.NewString(),
		RestaurantID:     restaurantID,
		Name:             strings.TrimSpace(in.Name),
		NameTranslations: in.NameTranslations,
		Description:      in.Description,
		Category:         in.Category,
		Type:             in.Type,
		Price:            in.Price,
		Available:        in.Available,
		DisplayOrder:     in.DisplayOrder,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct replaces the editable fields of a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in Product) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.NameTranslations = in.NameTranslations
	p.Description = in.Description
	p.Category = in.Category
	p.Type = in.Type
	p.Price = in.Price
	p.Available = in.Available
	p.DisplayOrder = in.DisplayOrder
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetProductAvailability marks a product as orderable or sold out
func (s *CatalogService) SetProductAvailability(ctx context.Context, id string, available bool) error {
	err := s.repo.SetProductAvailability(ctx, id, available)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("product %s not found", id)
	}
	return err
}

// DeleteProduct removes a product from the catalog
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	err := s.repo.DeleteProduct(ctx, id)
	if err == repository.ErrNotFound {
		return errors.NotFoundf("product %s not found", id)
	}
	return err
}

// GetConfiguration loads the customization configuration of a restaurant,
// falling back to the template of its cuisine type
func (s *CatalogService) GetConfiguration(ctx context.Context, restaurantID string) (*customizer.Configuration, error) {
	data, err := s.repo.GetCustomizationConfig(ctx, restaurantID)
	if err == nil {
		return customizer.ParseJSON(data)
	}
	if err != repository.ErrNotFound {
		return nil, err
	}

	r, err := s.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if r.CuisineType == "" {
		return nil, ErrNoConfiguration
	}
	tmpl, err := s.repo.GetCuisineTemplate(ctx, r.CuisineType)
	if err == repository.ErrNotFound {
		return nil, ErrNoConfiguration
	}
	if err != nil {
		return nil, err
	}
	return customizer.ParseJSON(tmpl.Config)
}

// parseConfiguration accepts a JSON or YAML document
func parseConfiguration(data []byte) (*customizer.Configuration, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.InvalidInput("configuration is empty")
	}
	var (
		cfg *customizer.Configuration
		err error
	)
	if trimmed[0] == '{' {
		cfg, err = customizer.ParseJSON(trimmed)
	} else {
		cfg, err = customizer.ParseYAML(trimmed)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid configuration")
	}
	return cfg, nil
}

// SaveConfiguration stores a restaurant's configuration given as JSON or YAML.
// Integrity issues are returned and logged but do not block the save.
func (s *CatalogService) SaveConfiguration(ctx context.Context, restaurantID string, data []byte) ([]customizer.Issue, error) {
	cfg, err := parseConfiguration(data)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	stored, err := cfg.JSON()
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveCustomizationConfig(ctx, restaurantID, stored); err != nil {
		return nil, err
	}

	issues := cfg.Validate()
	log := s.log.With("restaurant_id", restaurantID)
	for _, issue := range issues {
		log.Warn("Configuration issue", "issue", issue.String())
	}
	log.Info("Configuration saved", "steps", len(cfg.Steps), "issues", len(issues))
	return issues, nil
}

// ListTemplates returns the stored cuisine templates
func (s *CatalogService) ListTemplates(ctx context.Context) ([]models.CuisineTemplate, error) {
	return s.repo.ListCuisineTemplates(ctx)
}

// templateHeader carries the display name of a template file
type templateHeader struct {
	Name string `yaml:"name"`
}

// ImportTemplates loads every *.yaml / *.yml file in dir as the template of the
// cuisine type named after the file
func (s *CatalogService) ImportTemplates(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		cuisine := strings.TrimSuffix(entry.Name(), ext)
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return imported, err
		}

		var header templateHeader
		if err := yaml.Unmarshal(data, &header); err != nil {
			return imported, errors.Wrap(err, errors.ErrInvalidInput, "invalid template "+entry.Name())
		}
		cfg, err := customizer.ParseYAML(data)
		if err != nil {
			return imported, errors.Wrap(err, errors.ErrInvalidInput, "invalid template "+entry.Name())
		}
		for _, issue := range cfg.Validate() {
			s.log.Warn("Template issue", "cuisine_type", cuisine, "issue", issue.String())
		}
		if err := s.saveTemplate(ctx, cuisine, header.Name, cfg); err != nil {
			return imported, err
		}
		imported++
	}
	s.log.Info("Cuisine templates imported", "dir", dir, "count", imported)
	return imported, nil
}

func (s *CatalogService) saveTemplate(ctx context.Context, cuisine, name string, cfg *customizer.Configuration) error {
	data, err := cfg.JSON()
	if err != nil {
		return err
	}
	if name == "" {
		name = cuisine
	}
	return s.repo.SaveCuisineTemplate(ctx, &models.CuisineTemplate{CuisineType: cuisine, Name: name, Config: data})
}

// SyncFromBackend pulls cuisine templates, restaurants, products and
// configurations from the hosted backend
func (s *CatalogService) SyncFromBackend(ctx context.Context, backendURL string) (*SyncResult, error) {
	if backendURL == "" && s.client.BaseURL() == "" {
		return nil, ErrNoBackendURL
	}
	if backendURL != "" {
		s.client.SetBaseURL(backendURL)
	}
	s.log.Info("Syncing catalog from backend", "url", s.client.BaseURL())

	result := &SyncResult{Status: "success"}

	templates, err := s.client.FetchTemplates(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		cfg, err := customizer.ParseJSON(t.Config)
		if err != nil {
			s.log.Warn("Skipping unreadable template", "cuisine_type", t.CuisineType, "error", err)
			continue
		}
		if err := s.saveTemplate(ctx, t.CuisineType, t.Name, cfg); err != nil {
			return nil, err
		}
		result.TemplatesSynced++
	}

	restaurants, err := s.client.FetchRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	for _, br := range restaurants {
		if err := s.syncRestaurant(ctx, br, result); err != nil {
			return nil, err
		}
	}

	if result.ProductsSkipped > 0 {
		result.Status = "partial"
		result.Message = "some products have an unknown type"
	}
	s.log.Info("Backend sync complete",
		"restaurants_created", result.RestaurantsCreated,
		"restaurants_updated", result.RestaurantsUpdated,
		"products_created", result.ProductsCreated,
		"products_updated", result.ProductsUpdated,
		"products_skipped", result.ProductsSkipped)
	return result, nil
}

func (s *CatalogService) syncRestaurant(ctx context.Context, br backend.Restaurant, result *SyncResult) error {
	id := br.ID.String()
	locale := br.DefaultLocale
	if locale == "" {
		locale = "fr"
	}
	slug := br.Slug
	if slug == "" {
		slug = Slugify(br.Name)
	}
	created, err := s.repo.UpsertRestaurant(ctx, &models.Restaurant{
		ID:            id,
		Slug:          slug,
		Name:          br.Name,
		CuisineType:   br.CuisineType,
		DefaultLocale: locale,
		Locales:       br.Locales,
	})
	if err != nil {
		return err
	}
	if created {
		result.RestaurantsCreated++
	} else {
		result.RestaurantsUpdated++
	}

	products, err := s.client.FetchProducts(ctx, id)
	if err != nil {
		return err
	}
	for _, bp := range products {
		typ := customizer.ProductType(bp.Type)
		if !typ.Valid() {
			s.log.Warn("Skipping product with unknown type", "product_id", bp.ID.String(), "type", bp.Type)
			result.ProductsSkipped++
			continue
		}
		created, err := s.repo.UpsertProduct(ctx, &models.Product{
			ID:               bp.ID.String(),
			RestaurantID:     id,
			Name:             bp.Name,
			NameTranslations: bp.NameTranslations,
			Description:      bp.Description,
			Category:         bp.Category,
			Type:             typ,
			Price:            bp.Price,
			Available:        bp.IsAvailable(),
			DisplayOrder:     bp.DisplayOrder,
		})
		if err != nil {
			return err
		}
		if created {
			result.ProductsCreated++
		} else {
			result.ProductsUpdated++
		}
	}

	raw, err := s.client.FetchConfiguration(ctx, id)
	if stderrors.Is(err, backend.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	cfg, err := customizer.ParseJSON(raw)
	if err != nil {
		s.log.Warn("Skipping unreadable configuration", "restaurant_id", id, "error", err)
		return nil
	}
	data, err := cfg.JSON()
	if err != nil {
		return err
	}
	if err := s.repo.SaveCustomizationConfig(ctx, id, data); err != nil {
		return err
	}
	result.ConfigsSynced++
	return nil
}
