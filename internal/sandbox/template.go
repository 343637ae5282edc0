package sandbox

// challengeSchema 关卡模板库的种子数据。
// 公开表：products/categories/reviews；诱饵表：debug_flags；
// 隐藏表：admin_panel、security_audit_logs、encrypted_vault、system_internal_config（携带旗帜分段）。
// 真旗帜以 Base64 分段藏在 system_internal_config，线索散落在 security_audit_logs 与 admin_panel。
const challengeSchema = `
CREATE TABLE products (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	price REAL NOT NULL,
	description TEXT,
	category TEXT NOT NULL,
	stock INTEGER DEFAULT 0
);

CREATE TABLE categories (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT
);

CREATE TABLE reviews (
	id INTEGER PRIMARY KEY,
	product_id INTEGER,
	rating INTEGER,
	comment TEXT,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE admin_panel (
	id INTEGER PRIMARY KEY,
	setting_name TEXT NOT NULL,
	setting_value TEXT NOT NULL,
	last_modified TEXT
);

CREATE TABLE security_audit_logs (
	id INTEGER PRIMARY KEY,
	event_type TEXT,
	event_data TEXT,
	severity TEXT,
	timestamp TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE encrypted_vault (
	id INTEGER PRIMARY KEY,
	vault_key TEXT NOT NULL,
	encrypted_data TEXT NOT NULL,
	encryption_method TEXT,
	access_level INTEGER DEFAULT 99
);

CREATE TABLE debug_flags (
	id INTEGER PRIMARY KEY,
	flag_name TEXT,
	flag_value TEXT,
	is_active INTEGER DEFAULT 0
);

CREATE TABLE system_internal_config (
	config_id TEXT PRIMARY KEY,
	config_data TEXT NOT NULL,
	config_type TEXT,
	restricted INTEGER DEFAULT 1
);

INSERT INTO categories (id, name, description) VALUES
	(1, 'Electronics', 'Electronic devices and accessories'),
	(2, 'Books', 'Physical and digital books'),
	(3, 'Clothing', 'Fashion and apparel'),
	(4, 'Home', 'Home and garden products');

INSERT INTO products (id, name, price, description, category, stock) VALUES
	(1, 'Laptop Pro X1', 1299.99, 'High-performance laptop with 16GB RAM', 'Electronics', 15),
	(2, 'Wireless Mouse', 29.99, 'Ergonomic wireless mouse', 'Electronics', 50),
	(3, 'Programming Guide', 49.99, 'Complete guide to modern programming', 'Books', 100),
	(4, 'Security Handbook', 39.99, 'Cybersecurity best practices', 'Books', 75),
	(5, 'Developer T-Shirt', 19.99, 'Code, Sleep, Repeat design', 'Clothing', 200),
	(6, 'Coffee Mug', 12.99, 'World''s Best Developer mug', 'Home', 150),
	(7, 'Mechanical Keyboard', 89.99, 'RGB mechanical keyboard', 'Electronics', 30),
	(8, 'Standing Desk', 399.99, 'Adjustable height desk', 'Home', 10);

INSERT INTO reviews (id, product_id, rating, comment) VALUES
	(1, 1, 5, 'Excellent laptop, very fast!'),
	(2, 1, 4, 'Good but expensive'),
	(3, 2, 5, 'Perfect for daily use'),
	(4, 3, 5, 'Very informative book'),
	(5, 4, 4, 'Good security tips'),
	(6, 5, 5, 'Comfortable shirt'),
	(7, 6, 3, 'Mug is okay, nothing special'),
	(8, 7, 5, 'Best keyboard I''ve used');

INSERT INTO admin_panel (id, setting_name, setting_value, last_modified) VALUES
	(1, 'maintenance_mode', 'false', '2024-01-20 10:00:00'),
	(2, 'debug_mode', 'false', '2024-01-20 10:00:00'),
	(3, 'api_rate_limit', '100', '2024-01-20 10:00:00'),
	(4, 'encryption_key', 'AES256:7h3_k3y_15_n07_h3r3', '2024-01-20 10:00:00'),
	(5, 'vault_access_code', 'VAULT_2024_SECURE', '2024-01-20 10:00:00');

INSERT INTO security_audit_logs (id, event_type, event_data, severity, timestamp) VALUES
	(1, 'SYSTEM_START', 'System initialized successfully', 'INFO', '2024-01-20 08:00:00'),
	(2, 'CONFIG_CHANGE', 'Vault encryption updated to ROT13+Base64', 'WARNING', '2024-01-20 09:00:00'),
	(3, 'ACCESS_ATTEMPT', 'Failed access to encrypted_vault table', 'ERROR', '2024-01-20 10:00:00'),
	(4, 'SECURITY_SCAN', 'Flag components distributed across multiple tables', 'INFO', '2024-01-20 11:00:00'),
	(5, 'ENCRYPTION_UPDATE', 'Flag format: Combine system_internal_config entries with config_type="flag_segment"', 'INFO', '2024-01-20 12:00:00'),
	(6, 'AUDIT_NOTE', 'Order segments by config_id for correct flag', 'DEBUG', '2024-01-20 13:00:00');

INSERT INTO encrypted_vault (id, vault_key, encrypted_data, encryption_method, access_level) VALUES
	(1, 'api_keys', 'cGF5bWVudF9hcGlfa2V5XzIwMjQ=', 'BASE64', 50),
	(2, 'admin_passwords', 'YWRtaW5fcGFzc3dvcmRfaGFzaGVz', 'BASE64', 75),
	(3, 'secret_data', 'U3lGTVIxOWZWMU5mVjBGT1ZFVkVYekl3TWpSZg==', 'ROT13_BASE64', 99),
	(4, 'backup_codes', 'YmFja3VwX2NvZGVzXzIwMjRfdjI=', 'BASE64', 60),
	(5, 'master_key', 'bWFzdGVyX2tleV9mb3JfYWxsX3NlY3JldHM=', 'BASE64', 90);

INSERT INTO debug_flags (id, flag_name, flag_value, is_active) VALUES
	(1, 'test_flag', 'FLAG{this_is_not_the_real_flag}', 0),
	(2, 'dev_flag', 'FLAG{development_flag_ignore}', 0),
	(3, 'staging_flag', 'FLAG{staging_environment_2024}', 0),
	(4, 'debug_flag', 'FLAG{debug_mode_enabled_false}', 0),
	(5, 'temp_flag', 'FLAG{temporary_flag_for_testing}', 0),
	(6, 'prod_flag', 'FLAG{YOU_FOUND_ME_BUT_TRY_HARDER}', 1);

INSERT INTO system_internal_config (config_id, config_data, config_type, restricted) VALUES
	('A001', 'RkxBR3', 'flag_segment', 1),
	('A002', 'tTUUxf', 'flag_segment', 1),
	('A003', 'SU5KRUN', 'flag_segment', 1),
	('A004', 'USU9OX0', 'flag_segment', 1),
	('A005', '1BU1RFUl9', 'flag_segment', 1),
	('A006', 'DSEFMTEVOR0Vf', 'flag_segment', 1),
	('A007', 'Q09NUExFVEV9', 'flag_segment', 1),
	('B001', 'system_version', 'metadata', 0),
	('B002', 'database_schema', 'metadata', 0),
	('C001', 'encryption_salt', 'security', 1);

CREATE VIEW product_summary AS
	SELECT p.name, p.price, c.name as category
	FROM products p
	JOIN categories c ON p.category = c.name;
`
