package dbagent

import "context"

var sampleSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		age INTEGER,
		department TEXT,
		salary DECIMAL(10,2),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		order_date DATETIME DEFAULT CURRENT_TIMESTAMP,
		status TEXT DEFAULT 'pending',
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT,
		price DECIMAL(10,2) NOT NULL,
		stock_quantity INTEGER DEFAULT 0,
		description TEXT
	)`,
}

var sampleData = []string{
	`INSERT INTO users (name, email, age, department, salary) VALUES
		('John Doe', 'john.doe@example.com', 30, 'Engineering', 75000.00),
		('Jane Smith', 'jane.smith@example.com', 28, 'Marketing', 65000.00),
		('Bob Johnson', 'bob.johnson@example.com', 35, 'Sales', 70000.00),
		('Alice Brown', 'alice.brown@example.com', 32, 'Engineering', 80000.00),
		('Charlie Wilson', 'charlie.wilson@example.com', 29, 'HR', 60000.00)`,
	`INSERT INTO products (name, category, price, stock_quantity, description) VALUES
		('Laptop Pro', 'Electronics', 1299.99, 50, 'High-performance laptop'),
		('Wireless Mouse', 'Electronics', 29.99, 200, 'Ergonomic wireless mouse'),
		('Office Chair', 'Furniture', 299.99, 30, 'Comfortable office chair'),
		('Standing Desk', 'Furniture', 599.99, 15, 'Adjustable standing desk'),
		('Coffee Mug', 'Office Supplies', 12.99, 100, 'Ceramic coffee mug')`,
	`INSERT INTO orders (user_id, product_name, quantity, price, status) VALUES
		(1, 'Laptop Pro', 1, 1299.99, 'completed'),
		(1, 'Wireless Mouse', 2, 29.99, 'completed'),
		(2, 'Office Chair', 1, 299.99, 'pending'),
		(3, 'Standing Desk', 1, 599.99, 'shipped'),
		(4, 'Coffee Mug', 3, 12.99, 'completed'),
		(5, 'Laptop Pro', 1, 1299.99, 'pending')`,
}

// EnsureSampleData creates the demo schema and rows when the database
// has no user tables yet, so a fresh install has something to query.
func (d *DB) EnsureSampleData(ctx context.Context) error {
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, stmt := range sampleSchema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range sampleData {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
