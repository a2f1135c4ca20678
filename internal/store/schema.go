package store

func GetSalesSchemaPostgres() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS sales_transactions (
			transaction_id VARCHAR(64) PRIMARY KEY,
			sale_date DATE NOT NULL,
			customer_id VARCHAR(64),
			gender VARCHAR(16),
			age INT,
			product_category VARCHAR(255) NOT NULL CHECK (product_category <> ''),
			quantity INT NOT NULL CHECK (quantity >= 0),
			unit_price DECIMAL(12, 2) NOT NULL CHECK (unit_price >= 0),
			total_amount DECIMAL(12, 2) NOT NULL CHECK (total_amount >= 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_transactions_date ON sales_transactions (sale_date)`,
		`CREATE TABLE IF NOT EXISTS config_parameters (
			param_name VARCHAR(64) PRIMARY KEY,
			param_value DECIMAL(12, 4) NOT NULL
		)`,
	}
}

func GetSalesSchemaMySQL() []string {
	// MySQL has no CREATE INDEX IF NOT EXISTS, so the date index lives in
	// the table definition.
	return []string{
		`CREATE TABLE IF NOT EXISTS sales_transactions (
			transaction_id VARCHAR(64) PRIMARY KEY,
			sale_date DATE NOT NULL,
			customer_id VARCHAR(64),
			gender VARCHAR(16),
			age INT,
			product_category VARCHAR(255) NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 0),
			unit_price DECIMAL(12, 2) NOT NULL CHECK (unit_price >= 0),
			total_amount DECIMAL(12, 2) NOT NULL CHECK (total_amount >= 0),
			INDEX idx_sales_transactions_date (sale_date)
		)`,
		`CREATE TABLE IF NOT EXISTS config_parameters (
			param_name VARCHAR(64) PRIMARY KEY,
			param_value DECIMAL(12, 4) NOT NULL
		)`,
	}
}

/*
MongoDB document structure:

sales_transactions: {
  _id: <string>,
  sale_date: <date, UTC midnight>,
  customer_id: <string>,
  gender: <string>,
  age: <number>,
  product_category: <string>,
  quantity: <number>,
  unit_price: <decimal128>,
  total_amount: <decimal128>
}

config_parameters: {
  _id: <string>,
  value: <decimal128>
}
*/
