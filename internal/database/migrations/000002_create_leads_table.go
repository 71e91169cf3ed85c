package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateLeadsTable creates the leads table and the lead_sequences counter
func CreateLeadsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_leads_table",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS leads (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					unique_id VARCHAR(30) UNIQUE,
					name VARCHAR(100) NOT NULL,
					phone VARCHAR(20) NOT NULL,
					loan_amount DECIMAL(15,2) DEFAULT 0,
					estimated_savings DECIMAL(15,2) DEFAULT 0,
					monthly_savings DECIMAL(15,2) DEFAULT 0,
					yearly_savings DECIMAL(15,2) DEFAULT 0,
					new_monthly_repayment DECIMAL(15,2) DEFAULT 0,
					bank_name VARCHAR(100),
					status VARCHAR(30) NOT NULL DEFAULT 'New',
					assigned_agent_id UUID REFERENCES agents(id),
					referrer_id UUID REFERENCES agents(id),
					referrer_code VARCHAR(50),
					source VARCHAR(30) DEFAULT 'Direct',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_leads_status ON leads(status);
				CREATE INDEX idx_leads_assigned_agent_id ON leads(assigned_agent_id);
				CREATE INDEX idx_leads_created_at ON leads(created_at);
				CREATE INDEX idx_leads_deleted_at ON leads(deleted_at);
			`).Error; err != nil {
				return err
			}

			// Single-row counter serializing display-ID allocation.
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS lead_sequences (
					id INTEGER PRIMARY KEY,
					last_value BIGINT NOT NULL DEFAULT 0,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				INSERT INTO lead_sequences (id, last_value) VALUES (1, 0)
				ON CONFLICT (id) DO NOTHING;
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS lead_sequences").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS leads").Error
		},
	}
}
