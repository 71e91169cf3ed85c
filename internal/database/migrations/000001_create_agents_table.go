package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateAgentsTable creates the agents table
func CreateAgentsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_agents_table",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

				CREATE TABLE IF NOT EXISTS agents (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					name VARCHAR(100) NOT NULL,
					phone VARCHAR(20) NOT NULL UNIQUE,
					email VARCHAR(255) UNIQUE,
					location VARCHAR(100) DEFAULT 'Unknown',
					password_hash VARCHAR(255) NOT NULL,
					role VARCHAR(20) NOT NULL DEFAULT 'Agent',
					status VARCHAR(20) NOT NULL DEFAULT 'Pending',
					referral_code VARCHAR(50) NOT NULL UNIQUE,
					parent_referrer_id UUID REFERENCES agents(id) ON DELETE SET NULL,
					bank_name VARCHAR(100),
					account_number VARCHAR(30),
					reset_password_token VARCHAR(255) UNIQUE,
					reset_password_expires TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_agents_phone ON agents(phone);
				CREATE INDEX idx_agents_status ON agents(status);
				CREATE INDEX idx_agents_role ON agents(role);
				CREATE INDEX idx_agents_referral_code ON agents(referral_code);
				CREATE INDEX idx_agents_deleted_at ON agents(deleted_at);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS agents").Error
		},
	}
}
