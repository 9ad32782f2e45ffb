package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS restaurants (
			id TEXT PRIMARY KEY,
			slug TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			cuisine_type TEXT,
			default_locale TEXT NOT NULL DEFAULT 'fr',
			locales TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			restaurant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			name_translations TEXT,
			description TEXT,
			category TEXT,
			type TEXT NOT NULL,
			price TEXT NOT NULL DEFAULT '0',
			available BOOLEAN DEFAULT 1,
			display_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS customization_configs (
			restaurant_id TEXT PRIMARY KEY,
			config TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS cuisine_templates (
			cuisine_type TEXT PRIMARY KEY,
			name TEXT,
			config TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			restaurant_id TEXT NOT NULL,
			number INTEGER NOT NULL DEFAULT 0,
			channel TEXT NOT NULL,
			status TEXT NOT NULL,
			customer_name TEXT,
			table_number TEXT,
			locale TEXT,
			total TEXT NOT NULL DEFAULT '0',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (restaurant_id) REFERENCES restaurants(id)
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			product_type TEXT NOT NULL,
			name TEXT NOT NULL,
			summary TEXT,
			unit_price TEXT NOT NULL,
			choices TEXT,
			person TEXT,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_restaurant ON products(restaurant_id, display_order)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_restaurant_status ON orders(restaurant_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func encodeJSON(v any) (sql.NullString, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	if string(data) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeJSON(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ==================== Restaurant Methods ====================

const restaurantColumns = `id, slug, name, cuisine_type, default_locale, locales, created_at`

func scanRestaurant(s scanner) (*models.Restaurant, error) {
	var rest models.Restaurant
	var cuisine, locales sql.NullString
	if err := s.Scan(&rest.ID, &rest.Slug, &rest.Name, &cuisine, &rest.DefaultLocale, &locales, &rest.CreatedAt); err != nil {
		return nil, err
	}
	rest.CuisineType = cuisine.String
	if err := decodeJSON(locales, &rest.Locales); err != nil {
		return nil, err
	}
	return &rest, nil
}

// ListRestaurants returns every restaurant ordered by name
func (r *Repository) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rest)
	}
	return out, rows.Err()
}

// GetRestaurant retrieves a restaurant by id
func (r *Repository) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rest, err
}

// GetRestaurantBySlug retrieves a restaurant by its public slug
func (r *Repository) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rest, err
}

// CreateRestaurant inserts a restaurant. A taken slug returns ErrDuplicate.
func (r *Repository) CreateRestaurant(ctx context.Context, rest *models.Restaurant) error {
	locales, err := encodeJSON(rest.Locales)
	if err != nil {
		return err
	}
	if rest.CreatedAt.IsZero() {
		rest.CreatedAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO restaurants (id, slug, name, cuisine_type, default_locale, locales, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rest.ID, rest.Slug, rest.Name, rest.CuisineType, rest.DefaultLocale, locales, rest.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// UpsertRestaurant inserts or updates a restaurant by id
func (r *Repository) UpsertRestaurant(ctx context.Context, rest *models.Restaurant) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants WHERE id = ?`, rest.ID).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return true, r.CreateRestaurant(ctx, rest)
	}

	locales, err := encodeJSON(rest.Locales)
	if err != nil {
		return false, err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE restaurants SET slug = ?, name = ?, cuisine_type = ?, default_locale = ?, locales = ?
		WHERE id = ?
	`, rest.Slug, rest.Name, rest.CuisineType, rest.DefaultLocale, locales, rest.ID)
	if isUniqueViolation(err) {
		return false, ErrDuplicate
	}
	return false, err
}

// ==================== Product Methods ====================

const productColumns = `id, restaurant_id, name, name_translations, description, category, type, price, available, display_order`

func scanProduct(s scanner) (*models.Product, error) {
	var p models.Product
	var translations, description, category sql.NullString
	var productType string
	if err := s.Scan(&p.ID, &p.RestaurantID, &p.Name, &translations, &description, &category,
		&productType, &p.Price, &p.Available, &p.DisplayOrder); err != nil {
		return nil, err
	}
	p.Type = customizer.ProductType(productType)
	p.Description = description.String
	p.Category = category.String
	if err := decodeJSON(translations, &p.NameTranslations); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns the catalog of a restaurant in display order
func (r *Repository) ListProducts(ctx context.Context, restaurantID string, onlyAvailable bool) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE restaurant_id = ?`
	if onlyAvailable {
		query += ` AND available = 1`
	}
	query += ` ORDER BY display_order, name`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetProduct retrieves a product by id
func (r *Repository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// CreateProduct inserts a product
func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	translations, err := encodeJSON(p.NameTranslations)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (id, restaurant_id, name, name_translations, description, category, type, price, available, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.RestaurantID, p.Name, translations, p.Description, p.Category, string(p.Type), p.Price, p.Available, p.DisplayOrder)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// UpdateProduct overwrites a product's editable fields
func (r *Repository) UpdateProduct(ctx context.Context, p *models.Product) error {
	translations, err := encodeJSON(p.NameTranslations)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET name = ?, name_translations = ?, description = ?, category = ?, type = ?,
			price = ?, available = ?, display_order = ?
		WHERE id = ?
	`, p.Name, translations, p.Description, p.Category, string(p.Type), p.Price, p.Available, p.DisplayOrder, p.ID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// UpsertProduct inserts or updates a product by id
func (r *Repository) UpsertProduct(ctx context.Context, p *models.Product) (bool, error) {
	err := r.UpdateProduct(ctx, p)
	if err == nil {
		return false, nil
	}
	if err != ErrNotFound {
		return false, err
	}
	return true, r.CreateProduct(ctx, p)
}

// SetProductAvailability marks a product as orderable or sold out
func (r *Repository) SetProductAvailability(ctx context.Context, id string, available bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE products SET available = ? WHERE id = ?`, available, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// DeleteProduct deletes a product
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Configuration Methods ====================

// GetCustomizationConfig returns the stored JSON configuration of a restaurant
func (r *Repository) GetCustomizationConfig(ctx context.Context, restaurantID string) ([]byte, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT config FROM customization_configs WHERE restaurant_id = ?`, restaurantID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// SaveCustomizationConfig stores the JSON configuration of a restaurant
func (r *Repository) SaveCustomizationConfig(ctx context.Context, restaurantID string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customization_configs (restaurant_id, config, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(restaurant_id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at
	`, restaurantID, string(data), time.Now().UTC())
	return err
}

// GetCuisineTemplate returns the template of a cuisine type
func (r *Repository) GetCuisineTemplate(ctx context.Context, cuisineType string) (*models.CuisineTemplate, error) {
	var t models.CuisineTemplate
	var name sql.NullString
	var data string
	err := r.db.QueryRowContext(ctx, `
		SELECT cuisine_type, name, config, updated_at FROM cuisine_templates WHERE cuisine_type = ?
	`, cuisineType).Scan(&t.CuisineType, &name, &data, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Name = name.String
	t.Config = []byte(data)
	return &t, nil
}

// SaveCuisineTemplate inserts or replaces a cuisine template
func (r *Repository) SaveCuisineTemplate(ctx context.Context, t *models.CuisineTemplate) error {
	t.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cuisine_templates (cuisine_type, name, config, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(cuisine_type) DO UPDATE SET name = excluded.name, config = excluded.config, updated_at = excluded.updated_at
	`, t.CuisineType, t.Name, string(t.Config), t.UpdatedAt)
	return err
}

// ListCuisineTemplates lists templates without their configuration body
func (r *Repository) ListCuisineTemplates(ctx context.Context) ([]models.CuisineTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT cuisine_type, name, updated_at FROM cuisine_templates ORDER BY cuisine_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CuisineTemplate
	for rows.Next() {
		var t models.CuisineTemplate
		var name sql.NullString
		if err := rows.Scan(&t.CuisineType, &name, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Name = name.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// ==================== Order Methods ====================

const orderColumns = `id, restaurant_id, number, channel, status, customer_name, table_number, locale, total, created_at, updated_at`

func scanOrder(s scanner) (*models.Order, error) {
	var o models.Order
	var channel, status string
	var customer, table, locale sql.NullString
	if err := s.Scan(&o.ID, &o.RestaurantID, &o.Number, &channel, &status, &customer, &table, &locale,
		&o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Channel = models.Channel(channel)
	o.Status = models.OrderStatus(status)
	o.CustomerName = customer.String
	o.TableNumber = table.String
	o.Locale = locale.String
	return &o, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nextOrderNumber(ctx context.Context, q execer, restaurantID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(number), 0) + 1 FROM orders WHERE restaurant_id = ? AND status != ?
	`, restaurantID, string(models.StatusCart)).Scan(&n)
	return n, err
}

func insertItems(ctx context.Context, q execer, orderID string, items []models.OrderItem) error {
	for i := range items {
		it := &items[i]
		choices, err := encodeJSON(it.Choices)
		if err != nil {
			return err
		}
		result, err := q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_type, name, summary, unit_price, choices, person)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, orderID, it.ProductID, string(it.ProductType), it.Name, it.Summary, it.UnitPrice, choices, it.Person)
		if err != nil {
			return err
		}
		if it.ID, err = result.LastInsertId(); err != nil {
			return err
		}
		it.OrderID = orderID
	}
	return nil
}

// CreateOrder inserts an order with its items. Orders created past the cart
// status receive the next order number of the restaurant.
func (r *Repository) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Status != models.StatusCart {
		if o.Number, err = nextOrderNumber(ctx, tx, o.RestaurantID); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, restaurant_id, number, channel, status, customer_name, table_number, locale, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.RestaurantID, o.Number, string(o.Channel), string(o.Status), o.CustomerName, o.TableNumber, o.Locale,
		o.Total, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}
	return tx.Commit()
}

// GetOrder retrieves an order with its items
func (r *Repository) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.listItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) listItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_type, name, summary, unit_price, choices, person
		FROM order_items WHERE order_id = ? ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		var productType string
		var summary, choices, person sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &productType, &it.Name, &summary,
			&it.UnitPrice, &choices, &person); err != nil {
			return nil, err
		}
		it.ProductType = customizer.ProductType(productType)
		it.Summary = summary.String
		it.Person = person.String
		if choices.Valid {
			it.Choices = &customizer.Choices{}
			if err := decodeJSON(choices, it.Choices); err != nil {
				return nil, err
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOrders returns the orders of a restaurant, oldest first, optionally
// filtered by status
func (r *Repository) ListOrders(ctx context.Context, restaurantID string, statuses ...models.OrderStatus) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = ?`
	args := []any{restaurantID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + placeholders(len(statuses)) + `)`
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	query += ` ORDER BY created_at, number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// items are loaded once the order cursor is released; the pool holds a single connection
	for i := range orders {
		if orders[i].Items, err = r.listItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// AddOrderItems appends lines to an order and refreshes its total
func (r *Repository) AddOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertItems(ctx, tx, orderID, items); err != nil {
		return err
	}
	if err := refreshTotal(ctx, tx, orderID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteOrderItem removes one line of an order and refreshes its total
func (r *Repository) DeleteOrderItem(ctx context.Context, orderID string, itemID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = ? AND order_id = ?`, itemID, orderID)
	if err != nil {
		return err
	}
	if err := expectAffected(result); err != nil {
		return err
	}
	if err := refreshTotal(ctx, tx, orderID); err != nil {
		return err
	}
	return tx.Commit()
}

// refreshTotal recomputes the order total in decimal arithmetic
func refreshTotal(ctx context.Context, tx *sql.Tx, orderID string) error {
	rows, err := tx.QueryContext(ctx, `SELECT unit_price FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for rows.Next() {
		var price decimal.Decimal
		if err := rows.Scan(&price); err != nil {
			rows.Close()
			return err
		}
		total = total.Add(price)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `UPDATE orders SET total = ?, updated_at = ? WHERE id = ?`, total, time.Now().UTC(), orderID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// PlaceOrder turns a cart into a pending order, assigning its number and
// storing the verified total and customer details
func (r *Repository) PlaceOrder(ctx context.Context, o *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	number, err := nextOrderNumber(ctx, tx, o.RestaurantID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, number = ?, customer_name = ?, table_number = ?, locale = ?, total = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(models.StatusPending), number, o.CustomerName, o.TableNumber, o.Locale, o.Total, now, o.ID, string(models.StatusCart))
	if err != nil {
		return err
	}
	if err := expectAffected(result); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	o.Status = models.StatusPending
	o.Number = number
	o.UpdatedAt = now
	return nil
}

// UpdateOrderStatus sets the status of an order
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// DeleteOrder deletes an order and its items
func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

// ==================== Stats Methods ====================

// GetOrderStats summarizes orders placed since a point in time
func (r *Repository) GetOrderStats(ctx context.Context, restaurantID string, since time.Time) (*models.OrderStats, error) {
	stats := &models.OrderStats{Revenue: decimal.Zero, TopProducts: []models.ProductCount{}}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, total FROM orders
		WHERE restaurant_id = ? AND status != ? AND created_at >= ?
	`, restaurantID, string(models.StatusCart), since.UTC())
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var total decimal.Decimal
		if err := rows.Scan(&status, &total); err != nil {
			rows.Close()
			return nil, err
		}
		if models.OrderStatus(status) == models.StatusCancelled {
			stats.Cancelled++
			continue
		}
		stats.OrderCount++
		stats.Revenue = stats.Revenue.Add(total)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT oi.product_id, COALESCE(p.name, MIN(oi.name)), COUNT(*) AS sold
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.restaurant_id = ? AND o.status NOT IN (?, ?) AND o.created_at >= ?
		GROUP BY oi.product_id
		ORDER BY sold DESC, oi.product_id
		LIMIT 5
	`, restaurantID, string(models.StatusCart), string(models.StatusCancelled), since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pc models.ProductCount
		if err := rows.Scan(&pc.ProductID, &pc.Name, &pc.Count); err != nil {
			return nil, err
		}
		stats.TopProducts = append(stats.TopProducts, pc)
	}
	return stats, rows.Err()
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"order_items": true, "orders": true, "products": true, "customization_configs": true,
	"cuisine_templates": true, "settings": true,
}

// ClearTable clears all data from a whitelisted table
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
