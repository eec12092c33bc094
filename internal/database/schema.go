package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the CREATE statements in dependency order.  Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS User (
		id VARCHAR(255) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Admin (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		FOREIGN KEY (user_id) REFERENCES User(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Seller (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		FOREIGN KEY (user_id) REFERENCES User(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Buyer (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		FOREIGN KEY (user_id) REFERENCES User(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Product (
		id VARCHAR(255) PRIMARY KEY,
		seller_id VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DOUBLE NOT NULL,
		category VARCHAR(255),
		FOREIGN KEY (seller_id) REFERENCES Seller(id)
	)`,
	"CREATE TABLE IF NOT EXISTS `Order` (" + `
		id VARCHAR(255) PRIMARY KEY,
		buyer_id VARCHAR(255) NOT NULL,
		seller_id VARCHAR(255) NOT NULL,
		status VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (buyer_id) REFERENCES Buyer(id),
		FOREIGN KEY (seller_id) REFERENCES Seller(id)
	)`,
	"CREATE TABLE IF NOT EXISTS Order_Product (" + `
		order_id VARCHAR(255) NOT NULL,
		product_id VARCHAR(255) NOT NULL,
		PRIMARY KEY (order_id, product_id),
		FOREIGN KEY (order_id) REFERENCES ` + "`Order`" + `(id),
		FOREIGN KEY (product_id) REFERENCES Product(id)
	)`,
	"CREATE TABLE IF NOT EXISTS Payment (" + `
		id VARCHAR(255) PRIMARY KEY,
		order_id VARCHAR(255) NOT NULL,
		amount DOUBLE NOT NULL,
		method VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (order_id) REFERENCES ` + "`Order`" + `(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Review (
		id VARCHAR(255) PRIMARY KEY,
		buyer_id VARCHAR(255) NOT NULL,
		product_id VARCHAR(255) NOT NULL,
		rating INT NOT NULL,
		comment TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (buyer_id) REFERENCES Buyer(id),
		FOREIGN KEY (product_id) REFERENCES Product(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Inquiry (
		id VARCHAR(255) PRIMARY KEY,
		buyer_id VARCHAR(255) NOT NULL,
		seller_id VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (buyer_id) REFERENCES Buyer(id),
		FOREIGN KEY (seller_id) REFERENCES Seller(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Cart (
		buyer_id VARCHAR(255) PRIMARY KEY,
		FOREIGN KEY (buyer_id) REFERENCES Buyer(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Cart_Product (
		cart_id VARCHAR(255) NOT NULL,
		product_id VARCHAR(255) NOT NULL,
		PRIMARY KEY (cart_id, product_id),
		FOREIGN KEY (cart_id) REFERENCES Cart(buyer_id),
		FOREIGN KEY (product_id) REFERENCES Product(id)
	)`,
	`CREATE TABLE IF NOT EXISTS Image (
		id VARCHAR(255) PRIMARY KEY,
		product_id VARCHAR(255) NOT NULL,
		url TEXT NOT NULL,
		FOREIGN KEY (product_id) REFERENCES Product(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES User(id)
	)`,
}

// Migrate creates every table that does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
